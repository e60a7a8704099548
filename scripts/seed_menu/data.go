package main

type seedItem struct {
	Name        string
	Short       string
	Price       float64
	ImageFile   string
	Allergens   []string
	Ingredients []string
}

type seedCategory struct {
	Name        string
	Description string
	Items       []seedItem
}

type seedWine struct {
	Name        string
	Region      string
	Description string
	PriceGlass  float64
	PriceBottle float64
	ImageFile   string
	Grape       string
	Pairing     []string
}

var staticMenu = []seedCategory{
	{
		Name:        "Antipasti",
		Description: "Starters",
		Items: []seedItem{
			{
				Name:        "Bruschetta Classica",
				Short:       "Grilled bread rubbed with garlic, topped with fresh tomatoes, basil, and extra virgin olive oil",
				Price:       28,
				ImageFile:   "antipasti-bruschetta.jpg",
				Allergens:   []string{"Gluten"},
				Ingredients: []string{"Tuscan bread", "Roma tomatoes", "Fresh basil", "Garlic", "Extra virgin olive oil", "Sea salt"},
			},
			{
				Name:        "Carpaccio di Manzo",
				Short:       "Thinly sliced raw beef with wild arugula, Parmigiano-Reggiano shavings, and aged balsamic",
				Price:       52,
				ImageFile:   "antipasti-carpaccio.jpg",
				Allergens:   []string{"Dairy"},
				Ingredients: []string{"Beef tenderloin", "Wild arugula", "Parmigiano-Reggiano DOP", "Aged balsamic vinegar", "Extra virgin olive oil", "Black pepper"},
			},
			{
				Name:        "Burrata con Pomodorini",
				Short:       "Creamy burrata cheese with cherry tomatoes, fresh basil pesto, and crusty bread",
				Price:       48,
				ImageFile:   "antipasti-burrata.jpg",
				Allergens:   []string{"Dairy", "Gluten", "Tree Nuts"},
				Ingredients: []string{"Burrata cheese", "Datterini tomatoes", "Fresh basil", "Pine nuts", "Garlic", "Crusty bread", "Extra virgin olive oil"},
			},
		},
	},
	{
		Name:        "Primi",
		Description: "First Courses",
		Items: []seedItem{
			{
				Name:        "Tagliatelle al Tartufo",
				Short:       "Fresh egg pasta with black truffle, Parmigiano cream, and shaved truffle",
				Price:       78,
				ImageFile:   "primi-tagliatelle.jpg",
				Allergens:   []string{"Gluten", "Eggs", "Dairy"},
				Ingredients: []string{"Fresh egg pasta", "Black truffle", "Parmigiano-Reggiano", "Heavy cream", "Butter", "White wine", "Shallots"},
			},
			{
				Name:        "Risotto ai Funghi Porcini",
				Short:       "Carnaroli rice slow-cooked with wild porcini mushrooms, white wine, and aged Parmigiano",
				Price:       62,
				ImageFile:   "primi-risotto.jpg",
				Allergens:   []string{"Dairy", "Sulphites"},
				Ingredients: []string{"Carnaroli rice", "Porcini mushrooms", "Vegetable broth", "White wine", "Parmigiano-Reggiano", "Butter", "Shallots", "Fresh thyme"},
			},
			{
				Name:        "Spaghetti alle Vongole",
				Short:       "Spaghetti with fresh clams, garlic, white wine, chili, and parsley",
				Price:       68,
				ImageFile:   "primi-vongole.jpg",
				Allergens:   []string{"Gluten", "Shellfish", "Sulphites"},
				Ingredients: []string{"Spaghetti", "Fresh clams", "White wine", "Garlic", "Calabrian chili", "Fresh parsley", "Extra virgin olive oil"},
			},
		},
	},
	{
		Name:        "Secondi",
		Description: "Main Courses",
		Items: []seedItem{
			{
				Name:        "Ossobuco alla Milanese",
				Short:       "Braised veal shank with saffron risotto and gremolata",
				Price:       98,
				ImageFile:   "secondi-ossobuco.jpg",
				Allergens:   []string{"Dairy", "Sulphites"},
				Ingredients: []string{"Veal shank", "Saffron risotto", "Tomatoes", "White wine", "Beef broth", "Lemon zest", "Garlic", "Fresh parsley", "Celery", "Carrots", "Onion"},
			},
			{
				Name:        "Branzino al Forno",
				Short:       "Whole oven-roasted sea bass with herbs, lemon, and seasonal vegetables",
				Price:       112,
				ImageFile:   "secondi-branzino.jpg",
				Allergens:   []string{"Fish"},
				Ingredients: []string{"Whole sea bass", "Fresh rosemary", "Thyme", "Lemon", "Seasonal vegetables", "Extra virgin olive oil", "White wine", "Garlic"},
			},
			{
				Name:        "Saltimbocca alla Romana",
				Short:       "Veal escalopes with prosciutto di Parma and sage in a white wine butter sauce",
				Price:       88,
				ImageFile:   "secondi-saltimbocca.jpg",
				Allergens:   []string{"Dairy"},
				Ingredients: []string{"Veal escalopes", "Prosciutto di Parma", "Fresh sage", "White wine", "Butter", "Black pepper"},
			},
		},
	},
	{
		Name:        "Dolci",
		Description: "Desserts",
		Items: []seedItem{
			{
				Name:        "Tiramisù",
				Short:       "Layers of espresso-soaked savoiardi and mascarpone cream dusted with cocoa",
				Price:       32,
				ImageFile:   "dolci-tiramisu.jpg",
				Allergens:   []string{"Gluten", "Eggs", "Dairy", "Alcohol"},
				Ingredients: []string{"Mascarpone cheese", "Savoiardi biscuits", "Espresso coffee", "Eggs", "Sugar", "Marsala wine", "Cocoa powder"},
			},
			{
				Name:        "Panna Cotta",
				Short:       "Silky vanilla cream with seasonal berry coulis and fresh berries",
				Price:       28,
				ImageFile:   "dolci-pannacotta.jpg",
				Allergens:   []string{"Dairy"},
				Ingredients: []string{"Heavy cream", "Vanilla bean", "Sugar", "Gelatin", "Seasonal berries", "Lemon juice"},
			},
			{
				Name:        "Cannoli Siciliani",
				Short:       "Crisp shells filled with sweet ricotta, pistachios, and candied orange",
				Price:       34,
				ImageFile:   "dolci-cannoli.jpg",
				Allergens:   []string{"Gluten", "Dairy", "Tree Nuts"},
				Ingredients: []string{"Cannoli shells", "Fresh ricotta", "Powdered sugar", "Dark chocolate chips", "Bronte pistachios", "Candied orange peel"},
			},
		},
	},
}

var staticWines = []seedWine{
	{
		Name:        "Chianti Classico DOCG",
		Region:      "Tuscany",
		Description: "Medium-bodied red with notes of cherry, plum, and subtle earthy undertones. Perfect with pasta and grilled meats.",
		PriceGlass:  28,
		PriceBottle: 145,
		ImageFile:   "wine-chianti.jpg",
		Grape:       "Sangiovese",
		Pairing:     []string{"Tagliatelle al Tartufo", "Saltimbocca alla Romana", "Bruschetta Classica"},
	},
	{
		Name:        "Barolo DOCG",
		Region:      "Piedmont",
		Description: "Full-bodied, elegant red with aromas of roses, tar, and dark fruit. The 'King of Wines' pairs beautifully with rich dishes.",
		PriceGlass:  48,
		PriceBottle: 285,
		ImageFile:   "wine-barolo.jpg",
		Grape:       "Nebbiolo",
		Pairing:     []string{"Ossobuco alla Milanese", "Risotto ai Funghi Porcini", "Carpaccio di Manzo"},
	},
	{
		Name:        "Pinot Grigio DOC",
		Region:      "Alto Adige",
		Description: "Crisp, refreshing white with hints of citrus, green apple, and white flowers. Ideal with seafood and light appetizers.",
		PriceGlass:  24,
		PriceBottle: 115,
		ImageFile:   "wine-pinotgrigio.jpg",
		Grape:       "Pinot Grigio",
		Pairing:     []string{"Branzino al Forno", "Spaghetti alle Vongole", "Burrata con Pomodorini"},
	},
	{
		Name:        "Prosecco DOCG",
		Region:      "Veneto",
		Description: "Lively sparkling wine with delicate bubbles and notes of pear, apple, and acacia. Perfect for celebrations or as an aperitivo.",
		PriceGlass:  26,
		PriceBottle: 125,
		ImageFile:   "wine-prosecco.jpg",
		Grape:       "Glera",
		Pairing:     []string{"Antipasti", "Light appetizers", "Celebrations"},
	},
}
