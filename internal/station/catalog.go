package station

import (
	"fmt"
	"time"

	"griddle/internal/api"
)

// ArgSpec describes a single tool argument for schema registration.
type ArgSpec struct {
	Name        string
	Description string
	Number      bool
	Required    bool
}

// ToolSpec describes one station tool: its schema, the simulated work
// duration, and the response rendered from the call arguments.
type ToolSpec struct {
	Name        string
	Description string
	Args        []ArgSpec
	Delay       time.Duration
	Respond     func(args map[string]interface{}) string
}

// Identity returns the human-readable banner a station serves on its
// root endpoint so operators can probe which station answers on a port.
func Identity(st api.Station) string {
	switch st {
	case api.StationGrill:
		return "🔥 Grill Station - Ready to handle all your grilling needs!"
	case api.StationFryer:
		return "🍟 Fryer Station - Ready to fry all your favorites!"
	case api.StationDessert:
		return "🍦 Dessert Station - Sweet treats coming right up!"
	case api.StationPlating:
		return "🍽️ Plating Station - Final touches and presentation!"
	default:
		return fmt.Sprintf("Unknown station %q", st)
	}
}

// Catalog returns the tool set a station exposes. The returned slice is
// freshly built on every call so callers may not mutate shared state.
func Catalog(st api.Station) []ToolSpec {
	switch st {
	case api.StationGrill:
		return grillTools()
	case api.StationFryer:
		return fryerTools()
	case api.StationDessert:
		return dessertTools()
	case api.StationPlating:
		return platingTools()
	default:
		return nil
	}
}

func grillTools() []ToolSpec {
	return []ToolSpec{
		{
			Name:        "cook_patty",
			Description: "Cook a burger patty to the requested doneness",
			Args: []ArgSpec{
				{Name: "patty_type", Description: "Type of patty (beef, chicken, veggie)", Required: true},
				{Name: "doneness", Description: "Doneness level (rare, medium, well-done)", Required: true},
			},
			Delay: 800 * time.Millisecond,
			Respond: func(args map[string]interface{}) string {
				return fmt.Sprintf("🥩 Cooking %s patty to %s doneness... Done! Perfectly cooked patty ready.",
					stringArg(args, "patty_type", "beef"), stringArg(args, "doneness", "medium"))
			},
		},
		{
			Name:        "melt_cheese",
			Description: "Melt a slice of cheese on the patty",
			Args: []ArgSpec{
				{Name: "cheese_type", Description: "Type of cheese (american, cheddar, swiss)", Required: true},
			},
			Delay: 300 * time.Millisecond,
			Respond: func(args map[string]interface{}) string {
				return fmt.Sprintf("🧀 Melting %s cheese on the patty... Perfect melt achieved!",
					stringArg(args, "cheese_type", "american"))
			},
		},
		{
			Name:        "add_bacon",
			Description: "Add crispy bacon strips",
			Args: []ArgSpec{
				{Name: "bacon_strips", Description: "Number of bacon strips", Number: true, Required: true},
			},
			Delay: 400 * time.Millisecond,
			Respond: func(args map[string]interface{}) string {
				return fmt.Sprintf("🥓 Adding %d strips of crispy bacon... Bacon perfectly placed!",
					intArg(args, "bacon_strips", 2))
			},
		},
		{
			Name:        "toast_bun",
			Description: "Toast a burger bun",
			Args: []ArgSpec{
				{Name: "bun_type", Description: "Type of bun (sesame, brioche, plain)", Required: true},
				{Name: "toast_level", Description: "How toasted (light, golden, dark)", Required: true},
			},
			Delay: 350 * time.Millisecond,
			Respond: func(args map[string]interface{}) string {
				return fmt.Sprintf("🍞 Toasting %s bun to %s... Golden brown perfection!",
					stringArg(args, "bun_type", "sesame"), stringArg(args, "toast_level", "golden"))
			},
		},
	}
}

func fryerTools() []ToolSpec {
	fryArgs := []ArgSpec{
		{Name: "portion", Description: "Portion size (small, medium, large)", Required: true},
		{Name: "duration", Description: "Fry time in minutes", Number: true, Required: true},
	}
	return []ToolSpec{
		{
			Name:        "fry_standard",
			Description: "Fry a portion of standard cut fries",
			Args:        fryArgs,
			Delay:       700 * time.Millisecond,
			Respond: func(args map[string]interface{}) string {
				return fmt.Sprintf("🍟 Frying %s portion of standard fries for %d minutes... Crispy golden fries ready!",
					stringArg(args, "portion", "medium"), intArg(args, "duration", 3))
			},
		},
		{
			Name:        "fry_waffle",
			Description: "Fry a portion of waffle cut fries",
			Args:        fryArgs,
			Delay:       700 * time.Millisecond,
			Respond: func(args map[string]interface{}) string {
				return fmt.Sprintf("🧇 Frying %s portion of waffle fries for %d minutes... Crispy waffle-cut fries ready!",
					stringArg(args, "portion", "medium"), intArg(args, "duration", 4))
			},
		},
		{
			Name:        "fry_sweet_potato",
			Description: "Fry a portion of sweet potato fries",
			Args:        fryArgs,
			Delay:       700 * time.Millisecond,
			Respond: func(args map[string]interface{}) string {
				return fmt.Sprintf("🍠 Frying %s portion of sweet potato fries for %d minutes... Delicious sweet potato fries ready!",
					stringArg(args, "portion", "medium"), intArg(args, "duration", 4))
			},
		},
	}
}

func dessertTools() []ToolSpec {
	return []ToolSpec{
		{
			Name:        "make_shake",
			Description: "Blend a milkshake",
			Args: []ArgSpec{
				{Name: "size", Description: "Size (small, medium, large)", Required: true},
				{Name: "flavor", Description: "Flavor (vanilla, chocolate, strawberry)", Required: true},
				{Name: "toppings", Description: "Toppings to add", Required: false},
			},
			Delay: 600 * time.Millisecond,
			Respond: func(args map[string]interface{}) string {
				return fmt.Sprintf("🥤 Making %s %s shake with %s... Creamy shake ready!",
					stringArg(args, "size", "medium"), stringArg(args, "flavor", "vanilla"),
					stringArg(args, "toppings", "no toppings"))
			},
		},
		{
			Name:        "make_sundae",
			Description: "Build an ice cream sundae",
			Args: []ArgSpec{
				{Name: "size", Description: "Size (small, medium, large)", Required: true},
				{Name: "flavor", Description: "Ice cream flavor", Required: true},
				{Name: "toppings", Description: "Toppings to add", Required: false},
			},
			Delay: 600 * time.Millisecond,
			Respond: func(args map[string]interface{}) string {
				return fmt.Sprintf("🍨 Making %s sundae with %s ice cream and %s... Delicious sundae ready!",
					stringArg(args, "size", "medium"), stringArg(args, "flavor", "vanilla"),
					stringArg(args, "toppings", "no toppings"))
			},
		},
		{
			Name:        "add_whipped_cream",
			Description: "Top a dessert with whipped cream",
			Args: []ArgSpec{
				{Name: "amount", Description: "Amount (light, regular, extra)", Required: true},
			},
			Delay: 200 * time.Millisecond,
			Respond: func(args map[string]interface{}) string {
				return fmt.Sprintf("🍦 Adding %s whipped cream... Perfect fluffy topping added!",
					stringArg(args, "amount", "regular"))
			},
		},
	}
}

func platingTools() []ToolSpec {
	return []ToolSpec{
		{
			Name:        "assemble_burger",
			Description: "Stack prepared components into a finished burger",
			Args: []ArgSpec{
				{Name: "components", Description: "Comma separated list of components", Required: true},
			},
			Delay: 500 * time.Millisecond,
			Respond: func(args map[string]interface{}) string {
				return fmt.Sprintf("🍔 Assembling burger with %s... Perfectly assembled burger ready!",
					stringArg(args, "components", "patty, bun"))
			},
		},
		{
			Name:        "plate_meal",
			Description: "Plate the meal for dine-in service",
			Args: []ArgSpec{
				{Name: "service", Description: "Service style (dine-in, counter)", Required: true},
				{Name: "presentation", Description: "Presentation style", Required: false},
			},
			Delay: 400 * time.Millisecond,
			Respond: func(args map[string]interface{}) string {
				return fmt.Sprintf("🍽️ Plating meal for %s with %s... Meal beautifully presented!",
					stringArg(args, "service", "dine-in"), stringArg(args, "presentation", "classic presentation"))
			},
		},
		{
			Name:        "package_takeout",
			Description: "Package the order for takeout",
			Args: []ArgSpec{
				{Name: "items", Description: "Items to pack", Required: true},
				{Name: "accessories", Description: "Napkins, condiments, utensils", Required: false},
			},
			Delay: 300 * time.Millisecond,
			Respond: func(args map[string]interface{}) string {
				return fmt.Sprintf("📦 Packaging %s for takeout with %s... Order ready for pickup!",
					stringArg(args, "items", "meal"), stringArg(args, "accessories", "napkins"))
			},
		},
	}
}

func stringArg(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// intArg tolerates float64 because JSON decoding delivers numbers that way.
func intArg(args map[string]interface{}, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}
