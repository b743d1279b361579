// Package aisle maps free-text ingredient names onto store aisles.
//
// Classification is first-match-wins over the declared table order: the
// aisles are scanned in order and, within an aisle, keywords are scanned in
// order; the first keyword contained in the lower-cased name decides. Order
// therefore encodes priority ("coconut milk" is listed under Canned & Jarred
// ahead of Dairy's "milk").
package aisle

import "strings"

// Fallback is returned when no keyword matches.
const Fallback = "Pantry"

// Category is one aisle and the keywords that select it.
type Category struct {
	Name     string
	Keywords []string
}

var table = []Category{
	{Name: "Canned & Jarred", Keywords: []string{
		"coconut milk", "coconut cream", "evaporated milk", "condensed milk",
		"broth", "stock", "peanut butter", "almond butter", "tomato paste",
		"tomato sauce", "diced tomatoes", "crushed tomatoes", "canned", "beans",
		"chickpeas", "lentils", "tuna", "anchovies", "olives", "capers", "pickles",
		"jam", "jelly", "salsa",
	}},
	{Name: "Baking", Keywords: []string{
		"flour", "sugar", "baking soda", "baking powder", "yeast", "vanilla",
		"cocoa", "chocolate chips", "cornstarch", "molasses", "sprinkles",
		"food coloring",
	}},
	{Name: "Produce", Keywords: []string{
		"apple", "banana", "lemon", "lime", "orange", "berries", "strawberr",
		"blueberr", "raspberr", "grape", "avocado", "tomato", "potato", "onion",
		"shallot", "garlic", "ginger", "carrot", "celery", "lettuce", "spinach",
		"kale", "arugula", "cabbage", "broccoli", "cauliflower", "zucchini",
		"cucumber", "eggplant", "pepper", "mushroom", "scallion", "leek",
		"asparagus", "corn", "squash", "pumpkin", "mango", "pineapple", "peach",
		"pear", "cilantro", "parsley", "basil", "mint", "dill", "rosemary",
		"thyme", "herbs", "sprouts",
	}},
	{Name: "Dairy", Keywords: []string{
		"milk", "butter", "cream", "cheese", "yogurt", "yoghurt", "egg",
		"parmesan", "mozzarella", "cheddar", "ricotta", "feta", "ghee", "kefir",
	}},
	{Name: "Meat & Seafood", Keywords: []string{
		"beef", "chicken", "pork", "turkey", "lamb", "bacon", "sausage",
		"steak", "mince", "prosciutto", "salami", "chorizo", "salmon", "shrimp",
		"prawn", "cod", "tilapia", "fish", "crab", "lobster", "scallop", "mussel",
		"clam", "duck", "veal",
	}},
	{Name: "Bakery", Keywords: []string{
		"bread", "baguette", "bagel", "bun", "roll", "tortilla", "pita",
		"croissant", "naan", "muffin",
	}},
	{Name: "Grains & Pasta", Keywords: []string{
		"rice", "pasta", "spaghetti", "penne", "macaroni", "noodle", "quinoa",
		"couscous", "oats", "oatmeal", "barley", "bulgur", "farro", "lasagna",
		"fettuccine", "cereal", "breadcrumbs", "panko",
	}},
	{Name: "Spices & Seasonings", Keywords: []string{
		"salt", "cumin", "paprika", "cinnamon", "nutmeg", "oregano", "chili powder",
		"curry", "turmeric", "cardamom", "clove", "bay leaf", "bay leaves",
		"seasoning", "spice", "allspice", "coriander", "cayenne", "saffron",
	}},
	{Name: "Condiments & Sauces", Keywords: []string{
		"ketchup", "mustard", "mayonnaise", "mayo", "soy sauce", "vinegar",
		"oil", "hot sauce", "sriracha", "worcestershire", "honey", "syrup",
		"dressing", "sauce", "pesto", "tahini", "miso",
	}},
	{Name: "Frozen", Keywords: []string{
		"frozen", "ice cream", "sorbet", "popsicle",
	}},
	{Name: "Beverages", Keywords: []string{
		"coffee", "tea", "juice", "soda", "water", "wine", "beer", "sparkling",
		"kombucha",
	}},
	{Name: "Snacks", Keywords: []string{
		"chips", "crackers", "pretzels", "popcorn", "nuts", "almonds", "cashews",
		"walnuts", "pecans", "granola", "cookies", "candy", "dried fruit", "raisins",
	}},
}

// Classify returns the aisle for an ingredient name.
func Classify(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return Fallback
	}
	for _, category := range table {
		for _, keyword := range category.Keywords {
			if strings.Contains(normalized, keyword) {
				return category.Name
			}
		}
	}
	return Fallback
}

// Names lists every aisle in table order followed by the fallback.
func Names() []string {
	names := make([]string, 0, len(table)+1)
	for _, category := range table {
		names = append(names, category.Name)
	}
	return append(names, Fallback)
}

// Table returns a copy of the classification table in scan order.
func Table() []Category {
	out := make([]Category, len(table))
	for i, category := range table {
		out[i] = Category{Name: category.Name, Keywords: append([]string(nil), category.Keywords...)}
	}
	return out
}
