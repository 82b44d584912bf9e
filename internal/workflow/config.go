package workflow

import (
	"github.com/roach88/flowc/internal/ir"
)

// Capability is the category of work a plugin can do. The plugin config
// variant of an ActionStep is chosen by capability, not by plugin name.
type Capability string

const (
	CapabilityMail        Capability = "mail"
	CapabilitySpreadsheet Capability = "spreadsheet"
	CapabilityTable       Capability = "table"
	CapabilityDatabase    Capability = "database"
	CapabilityCRM         Capability = "crm"
	CapabilityStorage     Capability = "storage"
	CapabilityCalendar    Capability = "calendar"
	CapabilityGeneric     Capability = "generic"
)

// capabilityByKind maps IR data source types and delivery methods to the
// capability that serves them.
var capabilityByKind = map[string]Capability{
	"email":       CapabilityMail,
	"spreadsheet": CapabilitySpreadsheet,
	"sheets":      CapabilitySpreadsheet,
	"table":       CapabilityTable,
	"database":    CapabilityDatabase,
	"crm":         CapabilityCRM,
	"file":        CapabilityStorage,
	"storage":     CapabilityStorage,
	"calendar":    CapabilityCalendar,
}

// CapabilityFor returns the capability serving a data source type or
// delivery method. Anything unrecognized is generic.
func CapabilityFor(kind string) Capability {
	if c, ok := capabilityByKind[kind]; ok {
		return c
	}
	return CapabilityGeneric
}

// PluginConfig is the sealed set of per-capability action configs.
type PluginConfig interface {
	Kind() Capability
	Refs() []ir.VarRef
	isPluginConfig()
}

type MailConfig struct {
	To      Template   `json:"to,omitempty"`
	CC      []Template `json:"cc,omitempty"`
	Subject Template   `json:"subject,omitempty"`
	Body    Template   `json:"body,omitempty"`
	Query   Template   `json:"query,omitempty"`
}

type SpreadsheetConfig struct {
	Spreadsheet Template `json:"spreadsheet"`
	Tab         Template `json:"tab,omitempty"`
	Range       Template `json:"range,omitempty"`
	Values      Template `json:"values,omitempty"`
}

type TableConfig struct {
	Table Template `json:"table"`
	Query Template `json:"query,omitempty"`
	Rows  Template `json:"rows,omitempty"`
}

type DatabaseConfig struct {
	Database Template `json:"database"`
	Query    Template `json:"query,omitempty"`
}

type CRMConfig struct {
	Object Template `json:"object"`
	Query  Template `json:"query,omitempty"`
	Record Template `json:"record,omitempty"`
}

type StorageConfig struct {
	Path    Template `json:"path"`
	Content Template `json:"content,omitempty"`
	Format  string   `json:"format,omitempty"`
}

type CalendarConfig struct {
	Calendar Template `json:"calendar"`
	Range    Template `json:"range,omitempty"`
	Event    Template `json:"event,omitempty"`
}

// GenericConfig is the fallback for plugins outside the known capabilities,
// such as chat, SMS and webhooks.
type GenericConfig struct {
	Params map[string]Template `json:"params"`
}

func (*MailConfig) Kind() Capability        { return CapabilityMail }
func (*SpreadsheetConfig) Kind() Capability { return CapabilitySpreadsheet }
func (*TableConfig) Kind() Capability       { return CapabilityTable }
func (*DatabaseConfig) Kind() Capability    { return CapabilityDatabase }
func (*CRMConfig) Kind() Capability         { return CapabilityCRM }
func (*StorageConfig) Kind() Capability     { return CapabilityStorage }
func (*CalendarConfig) Kind() Capability    { return CapabilityCalendar }
func (*GenericConfig) Kind() Capability     { return CapabilityGeneric }

func (c *MailConfig) Refs() []ir.VarRef {
	return templateRefs(append([]Template{c.To, c.Subject, c.Body, c.Query}, c.CC...)...)
}
func (c *SpreadsheetConfig) Refs() []ir.VarRef {
	return templateRefs(c.Spreadsheet, c.Tab, c.Range, c.Values)
}
func (c *TableConfig) Refs() []ir.VarRef    { return templateRefs(c.Table, c.Query, c.Rows) }
func (c *DatabaseConfig) Refs() []ir.VarRef { return templateRefs(c.Database, c.Query) }
func (c *CRMConfig) Refs() []ir.VarRef      { return templateRefs(c.Object, c.Query, c.Record) }
func (c *StorageConfig) Refs() []ir.VarRef  { return templateRefs(c.Path, c.Content) }
func (c *CalendarConfig) Refs() []ir.VarRef { return templateRefs(c.Calendar, c.Range, c.Event) }

func (c *GenericConfig) Refs() []ir.VarRef {
	params := make(map[string]any, len(c.Params))
	for k, v := range c.Params {
		params[k] = string(v)
	}
	return valueRefs(params)
}

func (*MailConfig) isPluginConfig()        {}
func (*SpreadsheetConfig) isPluginConfig() {}
func (*TableConfig) isPluginConfig()       {}
func (*DatabaseConfig) isPluginConfig()    {}
func (*CRMConfig) isPluginConfig()         {}
func (*StorageConfig) isPluginConfig()     {}
func (*CalendarConfig) isPluginConfig()    {}
func (*GenericConfig) isPluginConfig()     {}

// newPluginConfig returns an empty config for a capability, for decoding.
func newPluginConfig(c Capability) PluginConfig {
	switch c {
	case CapabilityMail:
		return &MailConfig{}
	case CapabilitySpreadsheet:
		return &SpreadsheetConfig{}
	case CapabilityTable:
		return &TableConfig{}
	case CapabilityDatabase:
		return &DatabaseConfig{}
	case CapabilityCRM:
		return &CRMConfig{}
	case CapabilityStorage:
		return &StorageConfig{}
	case CapabilityCalendar:
		return &CalendarConfig{}
	case CapabilityGeneric:
		return &GenericConfig{}
	default:
		return nil
	}
}
