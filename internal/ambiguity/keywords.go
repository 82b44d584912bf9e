package ambiguity

// Keyword dictionaries. Matching is case-folded and word-bounded.
var (
	deliveryVerbs = []string{"email", "e-mail", "send", "notify", "message", "mail", "post", "share", "deliver", "forward", "slack", "text"}

	eachTerms = []string{"each", "every", "per", "individual", "individually", "one by one"}
	allTerms  = []string{"all", "combined", "summary", "together", "aggregate", "total", "overall"}

	ownershipTerms = []string{"my", "mine", "their", "own", "assigned", "assigned to", "owned by", "owner"}
	allDataTerms   = []string{"all data", "all records", "everyone", "everything", "entire", "whole team", "company-wide", "across the company"}
)

// termPair is a set of opposite terms; an assumption on one side contradicts
// an assumption on the other.
type termPair struct {
	name     string
	category string
	left     []string
	right    []string
}

var conflictPairs = []termPair{
	{name: "daily_weekly", category: "time", left: []string{"daily", "every day"}, right: []string{"weekly", "every week"}},
	{name: "weekly_monthly", category: "time", left: []string{"weekly", "every week"}, right: []string{"monthly", "every month"}},
	{name: "realtime_scheduled", category: "time", left: []string{"real-time", "realtime", "immediately", "instantly"}, right: []string{"scheduled", "batch", "nightly"}},
	{name: "all_subset", category: "scope", left: []string{"all", "every", "entire"}, right: []string{"only", "subset", "some", "specific"}},
	{name: "private_public", category: "access", left: []string{"private", "internal", "confidential"}, right: []string{"public", "external", "shared"}},
	{name: "automatic_manual", category: "mode", left: []string{"automatic", "automatically", "auto"}, right: []string{"manual", "manually", "approval"}},
	{name: "summary_detailed", category: "format", left: []string{"summary", "summarized", "brief"}, right: []string{"detailed", "full", "raw", "verbose"}},
}

// vagueClass is a family of vague terms sharing one clarification menu.
type vagueClass struct {
	name    string
	terms   []string
	options []Option
}

var vagueClasses = []vagueClass{
	{
		name:  "quantifier",
		terms: []string{"some", "few", "a few", "many", "several", "most", "a lot", "lots", "various", "numerous"},
		options: []Option{
			{ID: "specific_count", Label: "A specific number"},
			{ID: "all_items", Label: "All matching items"},
			{ID: "top_10", Label: "Top 10"},
		},
	},
	{
		name:  "timeframe",
		terms: []string{"recent", "recently", "soon", "lately", "later", "regularly", "periodically", "frequently", "occasionally", "a while"},
		options: []Option{
			{ID: "last_7_days", Label: "Last 7 days"},
			{ID: "last_30_days", Label: "Last 30 days"},
			{ID: "custom_range", Label: "A custom date range"},
		},
	},
	{
		name:  "magnitude",
		terms: []string{"large", "small", "big", "significant", "important", "major", "minor", "high value", "low value"},
		options: []Option{
			{ID: "numeric_threshold", Label: "A numeric threshold"},
			{ID: "top_percent", Label: "Top 10%"},
			{ID: "ai_judgement", Label: "Let AI decide"},
		},
	},
}

// riskCategory is a family of risk keywords with its confirmation menu.
type riskCategory struct {
	name    string
	title   string
	terms   []string
	options []Option
}

var (
	piiRisk = riskCategory{
		name:  "pii",
		title: "Personal data",
		terms: []string{"ssn", "social security", "salary", "salaries", "date of birth", "dob", "passport", "credit card", "bank account", "phone number", "home address", "medical", "health record", "password", "personal data"},
		options: []Option{
			{ID: "acknowledge", Label: "I understand, proceed"},
			{ID: "filter_fields", Label: "Leave sensitive fields out"},
			{ID: "mask_fields", Label: "Mask sensitive fields"},
		},
	}
	deleteRisk = riskCategory{
		name:  "delete",
		title: "Destructive action",
		terms: []string{"delete", "remove", "purge", "erase", "drop", "wipe", "destroy"},
		options: []Option{
			{ID: "confirm_delete", Label: "Yes, delete"},
			{ID: "archive_instead", Label: "Archive instead"},
			{ID: "remove_step", Label: "Remove this step"},
		},
	}
	externalSendRisk = riskCategory{
		name:  "external_send",
		title: "Sending outside your team",
		options: []Option{
			{ID: "confirm_send", Label: "Yes, send it"},
			{ID: "internal_only", Label: "Only send internally"},
			{ID: "draft_for_review", Label: "Create drafts for review"},
		},
	}

	sendTerms         = []string{"send", "email", "e-mail", "post", "publish", "share", "notify", "message", "forward", "text"}
	externalTerms     = []string{"customer", "customers", "client", "clients", "external", "public", "vendor", "vendors", "partner", "partners", "prospects", "leads", "subscribers", "all contacts"}
	bulkTerms         = []string{"all", "every", "bulk", "mass", "entire", "batch"}
	irreversibleTerms = []string{"overwrite", "permanently", "irreversible", "replace", "update", "purge"}
)
