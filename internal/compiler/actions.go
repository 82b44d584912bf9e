package compiler

import (
	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/workflow"
)

// sourceOperations is the read operation for each capability.
var sourceOperations = map[workflow.Capability]string{
	workflow.CapabilitySpreadsheet: "read_range",
	workflow.CapabilityTable:       "list_rows",
	workflow.CapabilityDatabase:    "query",
	workflow.CapabilityCRM:         "search_records",
	workflow.CapabilityStorage:     "read_file",
	workflow.CapabilityCalendar:    "list_events",
	workflow.CapabilityMail:        "search_messages",
	workflow.CapabilityGeneric:     "fetch",
}

// deliveryOperations is the send operation for each delivery method.
var deliveryOperations = map[string]string{
	"email":   "send_email",
	"slack":   "send_message",
	"teams":   "send_message",
	"sms":     "send_message",
	"webhook": "post",
	"sheets":  "append_rows",
	"file":    "create_file",
}

// sourceStep builds the read action for a data source.
func sourceStep(ds ir.DataSource, plugins PluginResolver, output string) *workflow.ActionStep {
	capability := workflow.CapabilityFor(ds.Type)

	plugin := ds.Type
	if sr, ok := plugins.(SourceResolver); ok {
		plugin = sr.ResolveSourceTypeToPlugin(ds.Type)
	}

	var cfg workflow.PluginConfig
	switch capability {
	case workflow.CapabilitySpreadsheet:
		cfg = &workflow.SpreadsheetConfig{
			Spreadsheet: tmpl(firstNonEmpty(ds.Location, ds.Source)),
			Tab:         tmpl(ds.Tab),
			Range:       tmpl(ds.Query),
		}
	case workflow.CapabilityTable:
		cfg = &workflow.TableConfig{Table: tmpl(ds.Source), Query: tmpl(ds.Query)}
	case workflow.CapabilityDatabase:
		cfg = &workflow.DatabaseConfig{Database: tmpl(firstNonEmpty(ds.Location, ds.Source)), Query: tmpl(ds.Query)}
	case workflow.CapabilityCRM:
		cfg = &workflow.CRMConfig{Object: tmpl(ds.Source), Query: tmpl(ds.Query)}
	case workflow.CapabilityStorage:
		cfg = &workflow.StorageConfig{Path: tmpl(firstNonEmpty(ds.Location, ds.Source))}
	case workflow.CapabilityCalendar:
		cfg = &workflow.CalendarConfig{Calendar: tmpl(ds.Source), Range: tmpl(ds.Query)}
	case workflow.CapabilityMail:
		cfg = &workflow.MailConfig{Query: tmpl(firstNonEmpty(ds.Query, ds.Source))}
	default:
		cfg = &workflow.GenericConfig{Params: params(
			"source", ds.Source,
			"location", ds.Location,
			"query", ds.Query,
		)}
	}

	return &workflow.ActionStep{
		OutputVariable: output,
		Plugin:         plugin,
		Op:             sourceOperations[capability],
		Capability:     capability,
		Config:         cfg,
	}
}

// deliveryStep builds the send action for a delivery. content is the data
// being delivered and recipientScope is the variable that recipient_source
// names a field of.
func deliveryStep(d ir.Delivery, plugins PluginResolver, content, recipientScope, subject string) *workflow.ActionStep {
	capability := workflow.CapabilityFor(d.Method)

	recipient := workflow.Template(d.Recipient)
	if recipient == "" && d.RecipientSource != "" {
		recipient = fieldRef(recipientScope, d.RecipientSource)
	}
	body := workflow.Template(firstNonEmpty(d.Body, content))

	var cfg workflow.PluginConfig
	switch capability {
	case workflow.CapabilityMail:
		var cc []workflow.Template
		for _, addr := range d.CC {
			cc = append(cc, workflow.Template(addr))
		}
		cfg = &workflow.MailConfig{
			To:      recipient,
			CC:      cc,
			Subject: tmpl(firstNonEmpty(d.Subject, subject)),
			Body:    body,
		}
	case workflow.CapabilitySpreadsheet:
		cfg = &workflow.SpreadsheetConfig{
			Spreadsheet: workflow.Template(firstNonEmpty(d.URL, string(recipient))),
			Values:      body,
		}
	case workflow.CapabilityStorage:
		cfg = &workflow.StorageConfig{
			Path:    workflow.Template(firstNonEmpty(d.URL, string(recipient))),
			Content: body,
		}
	default:
		cfg = &workflow.GenericConfig{Params: params(
			"channel", d.Channel,
			"recipient", string(recipient),
			"url", d.URL,
			"subject", d.Subject,
			"message", string(body),
		)}
	}

	op, ok := deliveryOperations[d.Method]
	if !ok {
		op = "send"
	}
	return &workflow.ActionStep{
		Plugin:     plugins.ResolveDeliveryMethodToPlugin(d.Method),
		Op:         op,
		Capability: capability,
		Config:     cfg,
	}
}

// fieldRef renders {{scope.field}}, or {{field}} when there is no scope.
// A field that is already a placeholder is used as is.
func fieldRef(scope, field string) workflow.Template {
	if _, ok := ir.SingleRef(field); ok {
		return workflow.Template(field)
	}
	if scope == "" {
		return workflow.Template(ir.Ref(field))
	}
	return workflow.Template(ir.Ref(scope + "." + field))
}

func tmpl(s string) workflow.Template { return workflow.Template(s) }

// params builds a generic config map from key/value pairs, skipping empty values.
func params(kv ...string) map[string]workflow.Template {
	out := map[string]workflow.Template{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			out[kv[i]] = workflow.Template(kv[i+1])
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
