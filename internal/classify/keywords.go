package classify

// Category groups the e-waste taxonomy entry a keyword maps to.
type Category struct {
	Name string
	Slug string
}

type keywordEntry struct {
	key      string
	category Category
}

var (
	categoryComputers   = Category{Name: "Computers & Laptops", Slug: "computers"}
	categoryMobiles     = Category{Name: "Mobile Phones & Tablets", Slug: "mobiles"}
	categoryScreens     = Category{Name: "Screens & Monitors", Slug: "screens"}
	categoryAppliances  = Category{Name: "Home Appliances", Slug: "appliances"}
	categoryBatteries   = Category{Name: "Batteries & Chargers", Slug: "batteries"}
	categoryPrinters    = Category{Name: "Printers & Scanners", Slug: "printers"}
	categoryElectronics = Category{Name: "Small Electronics", Slug: "electronics"}
)

// keywordTable is scanned in declaration order; keep the slice ordered so
// matching stays deterministic.
var keywordTable = []keywordEntry{
	{"laptop", categoryComputers},
	{"notebook", categoryComputers},
	{"computer", categoryComputers},
	{"desktop", categoryComputers},
	{"keyboard", categoryComputers},
	{"mouse", categoryComputers},
	{"trackpad", categoryComputers},

	{"phone", categoryMobiles},
	{"smartphone", categoryMobiles},
	{"cellular", categoryMobiles},
	{"telephone", categoryMobiles},
	{"mobile", categoryMobiles},
	{"tablet", categoryMobiles},
	{"ipod", categoryMobiles},

	{"monitor", categoryScreens},
	{"screen", categoryScreens},
	{"television", categoryScreens},
	{"crt", categoryScreens},
	{"display", categoryScreens},
	{"projector", categoryScreens},

	{"microwave", categoryAppliances},
	{"refrigerator", categoryAppliances},
	{"freezer", categoryAppliances},
	{"washer", categoryAppliances},
	{"dryer", categoryAppliances},
	{"toaster", categoryAppliances},
	{"vacuum", categoryAppliances},
	{"blender", categoryAppliances},
	{"kettle", categoryAppliances},
	{"oven", categoryAppliances},

	{"battery", categoryBatteries},
	{"charger", categoryBatteries},
	{"powerbank", categoryBatteries},
	{"adapter", categoryBatteries},

	{"printer", categoryPrinters},
	{"scanner", categoryPrinters},
	{"photocopier", categoryPrinters},
	{"fax", categoryPrinters},

	{"radio", categoryElectronics},
	{"speaker", categoryElectronics},
	{"headphone", categoryElectronics},
	{"earphone", categoryElectronics},
	{"camera", categoryElectronics},
	{"console", categoryElectronics},
	{"joystick", categoryElectronics},
	{"router", categoryElectronics},
	{"modem", categoryElectronics},
	{"remote", categoryElectronics},
	{"electronic", categoryElectronics},
}

// Categories returns the taxonomy in table order without duplicates.
func Categories() []Category {
	seen := make(map[string]struct{}, len(keywordTable))
	out := make([]Category, 0, 8)
	for _, entry := range keywordTable {
		if _, ok := seen[entry.category.Slug]; ok {
			continue
		}
		seen[entry.category.Slug] = struct{}{}
		out = append(out, entry.category)
	}
	return out
}
