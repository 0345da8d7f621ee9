package intent

import (
	"fmt"
	"strings"

	"griddle/internal/api"
)

// rule is one (predicate, effect) pair of the resolution table. Rules are
// evaluated top to bottom; the table order IS the tie-breaking order, so
// resolution stays deterministic and testable.
type rule struct {
	// name documents the rule in debug logs and tests.
	name string

	// station is the group the produced steps belong to.
	station api.Station

	// match decides whether the rule applies to the (lowercased) text.
	match func(text string) bool

	// exclusive stops evaluation of later rules for the same station.
	// Used by the fryer sub-selection: "waffle" wins over "sweet" wins
	// over the standard cut.
	exclusive bool

	// steps produces the station invocations for a matching rule.
	steps func(text string) []api.PlanStep
}

// Resolver turns free-text order text into an ordered Plan. It is a pure
// function of its input: no I/O, never fails. Unrecognized text yields a
// minimal plan holding only the plating step.
type Resolver struct {
	rules []rule
}

// NewResolver creates a resolver with the fixed keyword table.
func NewResolver() *Resolver {
	return &Resolver{rules: defaultRules()}
}

// Resolve inspects the order text and produces the plan of station
// invocations. Matching is case-insensitive substring presence. Station
// groups are wired into a dependency chain following the kitchen's
// station ordering convention (grill, fryer, dessert, plating); within a
// group, steps run in table order.
func (r *Resolver) Resolve(orderText string) api.Plan {
	text := strings.ToLower(orderText)

	groups := make(map[api.Station][]api.PlanStep)
	done := make(map[api.Station]bool)

	for _, rl := range r.rules {
		if done[rl.station] || !rl.match(text) {
			continue
		}
		groups[rl.station] = append(groups[rl.station], rl.steps(text)...)
		if rl.exclusive {
			done[rl.station] = true
		}
	}

	groups[api.StationPlating] = platingSteps(text, groups)

	return assemble(groups)
}

// assemble flattens the station groups into a plan, chaining steps within
// a group and linking each group's first step to the previous non-empty
// group's last step. Conditional exclusion of stations composes cleanly:
// absent groups simply contribute no node to the graph.
func assemble(groups map[api.Station][]api.PlanStep) api.Plan {
	var plan api.Plan
	var prevLast string

	for _, station := range api.Stations {
		steps := groups[station]
		for i := range steps {
			if i == 0 {
				if prevLast != "" {
					steps[i].DependsOn = []string{prevLast}
				}
			} else {
				steps[i].DependsOn = []string{steps[i-1].ID}
			}
			plan.Steps = append(plan.Steps, steps[i])
		}
		if len(steps) > 0 {
			prevLast = steps[len(steps)-1].ID
		}
	}

	return plan
}

// platingSteps builds the mandatory final station group. Burger assembly
// precedes presentation when the plan contains grill work; presentation
// mode is selected first-match: takeout packaging beats dine-in plating.
func platingSteps(text string, groups map[api.Station][]api.PlanStep) []api.PlanStep {
	var steps []api.PlanStep

	if grill := groups[api.StationGrill]; len(grill) > 0 {
		steps = append(steps, api.PlanStep{
			ID:      "assemble_burger",
			Station: api.StationPlating,
			Tool:    "assemble_burger",
			Args:    map[string]interface{}{"components": grillComponents(grill)},
		})
	}

	if containsAny(text, "takeout", "bag") {
		steps = append(steps, api.PlanStep{
			ID:      "package_takeout",
			Station: api.StationPlating,
			Tool:    "package_takeout",
			Args: map[string]interface{}{
				"items":       "complete meal",
				"accessories": "napkins and condiments",
			},
		})
		return steps
	}

	steps = append(steps, api.PlanStep{
		ID:      "plate_meal",
		Station: api.StationPlating,
		Tool:    "plate_meal",
		Args: map[string]interface{}{
			"service":      "dine-in",
			"presentation": "classic",
		},
	})
	return steps
}

// grillComponents names the assembled burger parts from the grill steps
// present in the plan.
func grillComponents(grill []api.PlanStep) string {
	parts := []string{"beef patty"}
	for _, step := range grill {
		switch step.Tool {
		case "melt_cheese":
			parts = append(parts, "american cheese")
		case "add_bacon":
			parts = append(parts, "crispy bacon")
		case "toast_bun":
			parts = append(parts, "toasted sesame bun")
		}
	}
	return strings.Join(parts, ", ")
}

// defaultRules is the fixed keyword table. Order matters: it defines the
// station grouping and all tie-breaking (the fryer sub-selection and the
// shake flavor pick are both first-match).
func defaultRules() []rule {
	return []rule{
		{
			name:    "grill/patty",
			station: api.StationGrill,
			match:   matchAny("burger", "cheese"),
			steps: fixedSteps(api.PlanStep{
				ID:      "cook_patty",
				Station: api.StationGrill,
				Tool:    "cook_patty",
				Args:    map[string]interface{}{"patty_type": "beef", "doneness": "medium"},
			}),
		},
		{
			name:    "grill/cheese",
			station: api.StationGrill,
			match:   matchAll(matchAny("burger", "cheese"), matchAny("cheese")),
			steps: fixedSteps(api.PlanStep{
				ID:      "melt_cheese",
				Station: api.StationGrill,
				Tool:    "melt_cheese",
				Args:    map[string]interface{}{"cheese_type": "american"},
			}),
		},
		{
			name:    "grill/bacon",
			station: api.StationGrill,
			match:   matchAll(matchAny("burger", "cheese"), matchAny("bacon")),
			steps: fixedSteps(api.PlanStep{
				ID:      "add_bacon",
				Station: api.StationGrill,
				Tool:    "add_bacon",
				Args:    map[string]interface{}{"bacon_strips": 2},
			}),
		},
		{
			name:    "grill/bun",
			station: api.StationGrill,
			match:   matchAll(matchAny("burger", "cheese"), matchAny("toast")),
			steps: fixedSteps(api.PlanStep{
				ID:      "toast_bun",
				Station: api.StationGrill,
				Tool:    "toast_bun",
				Args:    map[string]interface{}{"bun_type": "sesame", "toast_level": "golden"},
			}),
		},
		{
			name:      "fryer/waffle",
			station:   api.StationFryer,
			match:     matchAll(matchAny("fries"), matchAny("waffle")),
			exclusive: true,
			steps:     fixedSteps(fryStep("fry_waffle")),
		},
		{
			name:      "fryer/sweet-potato",
			station:   api.StationFryer,
			match:     matchAll(matchAny("fries"), matchAny("sweet")),
			exclusive: true,
			steps:     fixedSteps(fryStep("fry_sweet_potato")),
		},
		{
			name:      "fryer/standard",
			station:   api.StationFryer,
			match:     matchAny("fries"),
			exclusive: true,
			steps:     fixedSteps(fryStep("fry_standard")),
		},
		{
			name:    "dessert/shake",
			station: api.StationDessert,
			match:   matchAny("shake"),
			steps: func(text string) []api.PlanStep {
				return []api.PlanStep{{
					ID:      "make_shake",
					Station: api.StationDessert,
					Tool:    "make_shake",
					Args: map[string]interface{}{
						"size":     "medium",
						"flavor":   pickFlavor(text),
						"toppings": "none",
					},
				}}
			},
		},
		{
			name:    "dessert/sundae",
			station: api.StationDessert,
			match:   matchAny("sundae"),
			steps: func(text string) []api.PlanStep {
				return []api.PlanStep{{
					ID:      "make_sundae",
					Station: api.StationDessert,
					Tool:    "make_sundae",
					Args: map[string]interface{}{
						"size":     "medium",
						"flavor":   pickFlavor(text),
						"toppings": "cherry",
					},
				}}
			},
		},
		{
			name:    "dessert/whipped-cream",
			station: api.StationDessert,
			match:   matchAll(matchAny("shake", "sundae"), matchAny("whipped")),
			steps: fixedSteps(api.PlanStep{
				ID:      "add_whipped_cream",
				Station: api.StationDessert,
				Tool:    "add_whipped_cream",
				Args:    map[string]interface{}{"amount": "generous"},
			}),
		},
	}
}

// pickFlavor selects the dessert flavor, first-match in a fixed order.
func pickFlavor(text string) string {
	for _, flavor := range []string{"chocolate", "vanilla", "strawberry"} {
		if strings.Contains(text, flavor) {
			return flavor
		}
	}
	return "vanilla"
}

func fryStep(tool string) api.PlanStep {
	return api.PlanStep{
		ID:      tool,
		Station: api.StationFryer,
		Tool:    tool,
		Args:    map[string]interface{}{"portion": "regular", "duration": 3},
	}
}

// fixedSteps adapts text-independent steps to the rule effect signature.
// Step args are copied per invocation so plans never share maps.
func fixedSteps(steps ...api.PlanStep) func(string) []api.PlanStep {
	return func(string) []api.PlanStep {
		out := make([]api.PlanStep, len(steps))
		for i, step := range steps {
			out[i] = step
			out[i].Args = make(map[string]interface{}, len(step.Args))
			for k, v := range step.Args {
				out[i].Args[k] = v
			}
		}
		return out
	}
}

func matchAny(keywords ...string) func(string) bool {
	return func(text string) bool {
		return containsAny(text, keywords...)
	}
}

func matchAll(preds ...func(string) bool) func(string) bool {
	return func(text string) bool {
		for _, pred := range preds {
			if !pred(text) {
				return false
			}
		}
		return true
	}
}

func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// Describe renders a short human-readable summary of a plan, used in
// debug logging.
func Describe(plan api.Plan) string {
	if len(plan.Steps) == 0 {
		return "empty plan"
	}
	parts := make([]string, len(plan.Steps))
	for i, step := range plan.Steps {
		parts[i] = fmt.Sprintf("%s/%s", step.Station, step.Tool)
	}
	return strings.Join(parts, " -> ")
}
