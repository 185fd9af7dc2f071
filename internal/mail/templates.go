package mail

import (
	"fmt"
	"sync"

	"github.com/osteele/liquid"
)

// DefaultSuccessTemplate is the registration confirmation email body used by
// the transactional and bulk success mailings.
const DefaultSuccessTemplate = `<html>
<body>
  <h2>Registration Completed</h2>
  <p>Your registration <strong>{{ reg_id }}</strong> has been completed successfully.</p>
  <p>Transaction reference: {{ id }}</p>
  <p>Amount paid: {{ amount }}</p>
  <p>You have been placed in <strong>{{ zone }}</strong>.</p>
  {% if settings.alert_message %}<p>{{ settings.alert_message }}</p>{% endif %}
  {% if settings.points_table_url %}<p><a href="{{ settings.points_table_url }}">Points table</a></p>{% endif %}
</body>
</html>`

// DefaultSuccessText is the plain-text fallback for the confirmation email.
const DefaultSuccessText = "Your registration has been completed successfully."

// TemplateService renders Liquid templates with caching keyed by the
// caller-provided cache key.
type TemplateService struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewTemplateService creates a template service.
func NewTemplateService() *TemplateService {
	return &TemplateService{
		engine: liquid.NewEngine(),
	}
}

// Parse compiles a template string and returns any syntax error.
func (ts *TemplateService) Parse(templateStr string) error {
	_, err := ts.engine.ParseString(templateStr)
	return err
}

// Compile parses a template for repeated rendering without touching the
// shared cache. The compiled template's lifetime is the caller's, so ad-hoc
// request templates are released once their job finishes.
func (ts *TemplateService) Compile(templateStr string) (*liquid.Template, error) {
	tpl, err := ts.engine.ParseString(templateStr)
	if err != nil {
		return nil, fmt.Errorf("template parse failed: %w", err)
	}
	return tpl, nil
}

// Render processes a template with the given context. When cacheKey is
// non-empty the compiled template is reused across calls.
func (ts *TemplateService) Render(cacheKey, templateStr string, ctx map[string]any) (string, error) {
	if cacheKey != "" {
		if cached, ok := ts.cache.Load(cacheKey); ok {
			tpl := cached.(*liquid.Template)
			return tpl.RenderString(ctx)
		}
	}

	tpl, err := ts.engine.ParseString(templateStr)
	if err != nil {
		return "", fmt.Errorf("template parse failed: %w", err)
	}

	if cacheKey != "" {
		ts.cache.Store(cacheKey, tpl)
	}

	out, err := tpl.RenderString(ctx)
	if err != nil {
		return "", fmt.Errorf("template render failed: %w", err)
	}
	return out, nil
}
