package compiler

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/flowc/internal/ir"
)

func TestStaticPluginResolverDefaults(t *testing.T) {
	r := NewStaticPluginResolver()
	assert.Equal(t, "gmail", r.ResolveDeliveryMethodToPlugin("email"))
	assert.Equal(t, "slack", r.ResolveDeliveryMethodToPlugin(" Slack "))
	assert.Equal(t, "pager", r.ResolveDeliveryMethodToPlugin("pager"))
	assert.Equal(t, "google-sheets", r.ResolveSourceTypeToPlugin("spreadsheet"))
	assert.Equal(t, "ftp", r.ResolveSourceTypeToPlugin("ftp"))
}

func TestStaticPluginResolverRegister(t *testing.T) {
	r := NewStaticPluginResolver()
	r.RegisterDelivery("email", "outlook")
	r.RegisterSource("CRM", "salesforce")

	assert.Equal(t, "outlook", r.ResolveDeliveryMethodToPlugin("email"))
	assert.Equal(t, "salesforce", r.ResolveSourceTypeToPlugin("crm"))

	other := NewStaticPluginResolver()
	assert.Equal(t, "gmail", other.ResolveDeliveryMethodToPlugin("email"))
}

func TestStaticPluginResolverConcurrent(t *testing.T) {
	r := NewStaticPluginResolver()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RegisterDelivery("teams", "teams-bot")
			_ = r.ResolveDeliveryMethodToPlugin("teams")
		}()
	}
	wg.Wait()
	assert.Equal(t, "teams-bot", r.ResolveDeliveryMethodToPlugin("teams"))
}

type methodOnly struct{}

func (methodOnly) ResolveDeliveryMethodToPlugin(method string) string { return "x-" + method }

func TestSourceFallsBackToType(t *testing.T) {
	step := sourceStep(ir.DataSource{Type: "crm", Source: "leads"}, methodOnly{}, "leads")
	assert.Equal(t, "crm", step.Plugin)
	assert.Equal(t, "search_records", step.Op)
}
