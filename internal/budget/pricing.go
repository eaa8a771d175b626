package budget

import "strings"

// ModelPricing defines per-model cost in USD per 1000 units. Patterns
// ending in "*" match by prefix.
type ModelPricing struct {
	Model           string
	InputCostPer1K  float64
	OutputCostPer1K float64
}

// DefaultPricing covers the model profiles the policy can select.
var DefaultPricing = []ModelPricing{
	{Model: "gpt-4o", InputCostPer1K: 0.005, OutputCostPer1K: 0.015},
	{Model: "gpt-4o-mini", InputCostPer1K: 0.00015, OutputCostPer1K: 0.0006},
	{Model: "gpt-4*", InputCostPer1K: 0.03, OutputCostPer1K: 0.06},
	{Model: "gpt-3.5-turbo", InputCostPer1K: 0.0005, OutputCostPer1K: 0.0015},
	{Model: "claude-3-5-sonnet*", InputCostPer1K: 0.003, OutputCostPer1K: 0.015},
	{Model: "claude-3-haiku*", InputCostPer1K: 0.00025, OutputCostPer1K: 0.00125},
}

// Calculator estimates the dollar cost of a call.
type Calculator struct {
	pricing map[string]ModelPricing
}

// NewCalculator builds a calculator, defaulting to DefaultPricing.
func NewCalculator(pricing []ModelPricing) *Calculator {
	if pricing == nil {
		pricing = DefaultPricing
	}
	c := &Calculator{pricing: make(map[string]ModelPricing, len(pricing))}
	for _, p := range pricing {
		c.pricing[p.Model] = p
	}
	return c
}

// Calculate returns the cost for the given model and unit counts, zero
// for unknown models.
func (c *Calculator) Calculate(model string, inputUnits, outputUnits int) float64 {
	p, ok := c.findPricing(model)
	if !ok {
		return 0
	}
	return float64(inputUnits)/1000.0*p.InputCostPer1K +
		float64(outputUnits)/1000.0*p.OutputCostPer1K
}

// findPricing tries an exact match, then the longest wildcard prefix.
func (c *Calculator) findPricing(model string) (ModelPricing, bool) {
	modelLower := strings.ToLower(model)

	for pattern, p := range c.pricing {
		if strings.EqualFold(pattern, model) {
			return p, true
		}
	}

	var best *ModelPricing
	var bestLen int
	for pattern, p := range c.pricing {
		if !strings.HasSuffix(pattern, "*") {
			continue
		}
		prefix := strings.ToLower(strings.TrimSuffix(pattern, "*"))
		if strings.HasPrefix(modelLower, prefix) && len(prefix) > bestLen {
			pCopy := p
			best = &pCopy
			bestLen = len(prefix)
		}
	}
	if best != nil {
		return *best, true
	}
	return ModelPricing{}, false
}
