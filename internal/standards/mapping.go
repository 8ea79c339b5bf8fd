package standards

// RuleMapping is the standards coverage of one rule-engine rule.
type RuleMapping struct {
	WCAG       []string
	Section508 []string
}

// s508 expands provision letters into full 1194.22 provision ids.
func s508(letters ...string) []string {
	ids := make([]string, len(letters))
	for i, l := range letters {
		ids[i] = "1194.22(" + l + ")"
	}
	return ids
}

// ruleMappings maps rule ids to the criteria and provisions they test.
// Rules absent from this table (best-practice rules such as "region") still
// appear as issues but contribute to neither scorecard.
var ruleMappings = map[string]RuleMapping{
	"area-alt":                    {WCAG: []string{"1.1.1", "2.4.4", "4.1.2"}, Section508: s508("a", "e")},
	"aria-allowed-attr":           {WCAG: []string{"4.1.2"}},
	"aria-braille-equivalent":     {WCAG: []string{"4.1.2"}},
	"aria-command-name":           {WCAG: []string{"4.1.2"}},
	"aria-conditional-attr":       {WCAG: []string{"4.1.2"}},
	"aria-deprecated-role":        {WCAG: []string{"4.1.2"}},
	"aria-hidden-body":            {WCAG: []string{"4.1.2"}},
	"aria-hidden-focus":           {WCAG: []string{"4.1.2"}},
	"aria-input-field-name":       {WCAG: []string{"4.1.2"}},
	"aria-meter-name":             {WCAG: []string{"1.1.1"}},
	"aria-progressbar-name":       {WCAG: []string{"1.1.1"}},
	"aria-prohibited-attr":        {WCAG: []string{"4.1.2"}},
	"aria-required-attr":          {WCAG: []string{"4.1.2"}},
	"aria-required-children":      {WCAG: []string{"1.3.1"}},
	"aria-required-parent":        {WCAG: []string{"1.3.1"}},
	"aria-roles":                  {WCAG: []string{"4.1.2"}},
	"aria-toggle-field-name":      {WCAG: []string{"4.1.2"}},
	"aria-tooltip-name":           {WCAG: []string{"4.1.2"}},
	"aria-valid-attr":             {WCAG: []string{"4.1.2"}},
	"aria-valid-attr-value":       {WCAG: []string{"4.1.2"}},
	"audio-caption":               {WCAG: []string{"1.2.1"}, Section508: s508("a")},
	"autocomplete-valid":          {WCAG: []string{"1.3.5"}},
	"avoid-inline-spacing":        {WCAG: []string{"1.4.12"}},
	"blink":                       {WCAG: []string{"2.2.2"}, Section508: s508("j")},
	"button-name":                 {WCAG: []string{"4.1.2"}, Section508: s508("a")},
	"bypass":                      {WCAG: []string{"2.4.1"}, Section508: s508("o")},
	"color-contrast":              {WCAG: []string{"1.4.3"}},
	"definition-list":             {WCAG: []string{"1.3.1"}},
	"dlitem":                      {WCAG: []string{"1.3.1"}},
	"document-title":              {WCAG: []string{"2.4.2"}},
	"duplicate-id-aria":           {WCAG: []string{"4.1.2"}},
	"form-field-multiple-labels":  {WCAG: []string{"3.3.2"}},
	"frame-focusable-content":     {WCAG: []string{"2.1.1"}},
	"frame-title":                 {WCAG: []string{"4.1.2"}, Section508: s508("i")},
	"frame-title-unique":          {WCAG: []string{"4.1.2"}},
	"html-has-lang":               {WCAG: []string{"3.1.1"}},
	"html-lang-valid":             {WCAG: []string{"3.1.1"}},
	"html-xml-lang-mismatch":      {WCAG: []string{"3.1.1"}},
	"image-alt":                   {WCAG: []string{"1.1.1"}, Section508: s508("a")},
	"input-button-name":           {WCAG: []string{"4.1.2"}, Section508: s508("a")},
	"input-image-alt":             {WCAG: []string{"1.1.1", "4.1.2"}, Section508: s508("a")},
	"label":                       {WCAG: []string{"4.1.2"}, Section508: s508("n")},
	"link-in-text-block":          {WCAG: []string{"1.4.1"}, Section508: s508("c")},
	"link-name":                   {WCAG: []string{"2.4.4", "4.1.2"}, Section508: s508("a")},
	"list":                        {WCAG: []string{"1.3.1"}},
	"listitem":                    {WCAG: []string{"1.3.1"}},
	"marquee":                     {WCAG: []string{"2.2.2"}},
	"meta-refresh":                {WCAG: []string{"2.2.1"}, Section508: s508("p")},
	"meta-viewport":               {WCAG: []string{"1.4.4"}},
	"nested-interactive":          {WCAG: []string{"4.1.2"}},
	"no-autoplay-audio":           {WCAG: []string{"1.4.2"}},
	"object-alt":                  {WCAG: []string{"1.1.1"}, Section508: s508("a")},
	"role-img-alt":                {WCAG: []string{"1.1.1"}, Section508: s508("a")},
	"scrollable-region-focusable": {WCAG: []string{"2.1.1"}},
	"select-name":                 {WCAG: []string{"4.1.2"}, Section508: s508("n")},
	"server-side-image-map":       {WCAG: []string{"2.1.1"}, Section508: s508("f")},
	"svg-img-alt":                 {WCAG: []string{"1.1.1"}, Section508: s508("a")},
	"td-headers-attr":             {WCAG: []string{"1.3.1"}, Section508: s508("g", "h")},
	"th-has-data-cells":           {WCAG: []string{"1.3.1"}, Section508: s508("g")},
	"valid-lang":                  {WCAG: []string{"3.1.2"}},
	"video-caption":               {WCAG: []string{"1.2.2"}, Section508: s508("a", "b")},
}

// WCAGForRule returns the WCAG criteria a rule tests.
// An unmapped rule yields an empty slice, never an error.
func WCAGForRule(ruleID string) []string {
	return cloneIDs(ruleMappings[ruleID].WCAG)
}

// Section508ForRule returns the Section 508 provisions a rule tests.
// An unmapped rule yields an empty slice, never an error.
func Section508ForRule(ruleID string) []string {
	return cloneIDs(ruleMappings[ruleID].Section508)
}

// IsMapped reports whether the rule contributes to any scorecard.
func IsMapped(ruleID string) bool {
	_, ok := ruleMappings[ruleID]
	return ok
}

func cloneIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
