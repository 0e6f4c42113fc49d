package traceability

// Demo codes printed on the sample QR labels.
const (
	DemoTraceabilityCode = "SHRIMP-ECU-2024-001"
	DemoCustomerCode     = "CUSTOMER-SHRIMP-2024-001"
	DemoAdminCode        = "ADMIN-PANEL-2024-001"
)

// DemoCode is a sample QR label shown on the scanner screen.
type DemoCode struct {
	Code        string
	Label       string
	Description string
	Glyph       string
}

var demoCodes = []DemoCode{
	{Code: DemoTraceabilityCode, Label: "Supply Chain View", Description: "Detailed traceability", Glyph: "🦐"},
	{Code: DemoCustomerCode, Label: "Customer View", Description: "B2C Experience", Glyph: "👥"},
	{Code: DemoAdminCode, Label: "Admin Panel", Description: "Configure layouts", Glyph: "⚙️"},
}

// DemoCodes returns the sample QR labels.
func DemoCodes() []DemoCode {
	return append([]DemoCode(nil), demoCodes...)
}

var defaultImages = []ImageOption{
	{Ref: "shrimp-1.jpg", Label: "Cooked Shrimp"},
	{Ref: "shrimp-2.jpg", Label: "Fresh Shrimp"},
	{Ref: "shrimp-3.jpg", Label: "Grilled Shrimp"},
}

var defaultProduct = ProductData{
	Image:               "shrimp-1.jpg",
	Name:                "Premium White Shrimp",
	ProductID:           DemoTraceabilityCode,
	HarvestDate:         "January 15, 2024",
	SustainabilityScore: 87,
	Certifications: []Certification{
		{Name: "ASC Certified", Icon: "🌊", Issuer: "Aquaculture Stewardship Council", Date: "2024-01-10", Document: "asc-certificate.pdf"},
		{Name: "BAP 4-Star", Icon: "⭐", Issuer: "Best Aquaculture Practices", Date: "2024-01-12", Document: "bap-certificate.pdf"},
		{Name: "Non-GMO", Icon: "🧬", Issuer: "Non-GMO Project", Date: "2024-01-08", Document: "non-gmo-certificate.pdf"},
		{Name: "Organic", Icon: "🌱", Issuer: "USDA Organic", Date: "2024-01-05", Document: "organic-certificate.pdf"},
	},
}

var defaultChain = []SupplyChainStep{
	{
		Step:            "Farm",
		Location:        "Guayas Province, Ecuador",
		Company:         "AquaMar Sustainable Farms",
		Date:            "2024-01-15",
		Status:          StatusCompleted,
		Icon:            IconFarm,
		Description:     "Responsible aquaculture with ASC certification",
		CarbonFootprint: "0.8 kg CO₂",
		BlockchainTxID:  "0x1a2b3c4d5e6f7890abcdef1234567890abcdef12",
		Tests: []StepTest{
			{Name: "Larvae Health Check", Result: "Passed", Date: "2024-01-10"},
			{Name: "Genetic Screening", Result: "SPF Certified", Date: "2024-01-12"},
		},
		Certifications: []StepCertification{
			{Name: "SPF Larvae Certificate", Issuer: "GOAL Standards", ID: "SPF-2024-001"},
		},
	},
	{
		Step:            "Processing",
		Location:        "Guayaquil, Ecuador",
		Company:         "EcoProcess Solutions",
		Date:            "2024-01-20",
		Status:          StatusCompleted,
		Icon:            IconProcessing,
		Description:     "IFS certified processing facility",
		CarbonFootprint: "0.6 kg CO₂",
		BlockchainTxID:  "0x2b3c4d5e6f7890abcdef1234567890abcdef1234",
		Tests: []StepTest{
			{Name: "Microbiological Analysis", Result: "Passed", Date: "2024-01-20"},
		},
		Certifications: []StepCertification{
			{Name: "HACCP Certificate", Issuer: "SGS", ID: "HACCP-EP-2024"},
		},
	},
	{
		Step:            "Distribution",
		Location:        "Miami, FL, USA",
		Company:         "FreshMarine Logistics",
		Date:            "2024-01-22",
		Status:          StatusCompleted,
		Icon:            IconDistribution,
		Description:     "Cold chain maintained at -18°C",
		CarbonFootprint: "0.5 kg CO₂",
		BlockchainTxID:  "0x3c4d5e6f7890abcdef1234567890abcdef123456",
		Tests: []StepTest{
			{Name: "Temperature Monitoring", Result: "Maintained", Date: "2024-01-22"},
		},
		Certifications: []StepCertification{
			{Name: "GDP Certificate", Issuer: "FDA", ID: "GDP-US-2024"},
		},
	},
	{
		Step:            "Retail",
		Location:        "Whole Foods Market",
		Company:         "Austin, TX, USA",
		Date:            "2024-01-25",
		Status:          StatusCurrent,
		Icon:            IconRetail,
		Description:     "Final point of sale",
		CarbonFootprint: "0.2 kg CO₂",
		BlockchainTxID:  "0x4d5e6f7890abcdef1234567890abcdef12345678",
		Tests: []StepTest{
			{Name: "Final Quality Check", Result: "Passed", Date: "2024-01-25"},
		},
		Certifications: []StepCertification{
			{Name: "Retail Food Safety", Issuer: "Whole Foods", ID: "RFS-WF-2024"},
		},
	},
}

var defaultEnvironmental = []EnvironmentalMetric{
	{Label: "Carbon Footprint", Value: "2.1 kg CO₂/kg", Status: "Low"},
	{Label: "Water Usage", Value: "15,200 L/kg", Status: "Efficient"},
	{Label: "Land Use", Value: "0.8 m²/kg", Status: "Minimal"},
	{Label: "Feed Efficiency", Value: "1.4:1 FCR", Status: "Excellent"},
}

// DefaultCatalog returns a fresh copy of the seed data.
func DefaultCatalog() Catalog {
	return Catalog{
		Product:       defaultProduct,
		Chain:         defaultChain,
		Environmental: defaultEnvironmental,
		Images:        defaultImages,
	}.Clone()
}

var defaultLayoutSpecs = []LayoutSpec{
	{
		Code:        LayoutComprehensive,
		Name:        "Comprehensive Layout",
		Description: "Full detailed view with product info, certifications, and complete supply chain journey in timeline format",
		NameLocalized: map[string]string{
			"es": "Diseño completo",
		},
		Certifications: CertDisplayBadges,
		SupplyChain:    ChainStyleTimeline,
	},
	{
		Code:        LayoutExecutive,
		Name:        "Executive Layout",
		Description: "Business-focused layout with hero image, sidebar certifications, and supply chain cards",
		NameLocalized: map[string]string{
			"es": "Diseño ejecutivo",
		},
		Certifications: CertDisplayList,
		SupplyChain:    ChainStyleCards,
	},
	{
		Code:        LayoutConsumer,
		Name:        "Consumer Layout",
		Description: "Simple mobile-friendly design with accordion supply chain and minimal information",
		NameLocalized: map[string]string{
			"es": "Diseño para consumidores",
		},
		Certifications: CertDisplayGrid,
		SupplyChain:    ChainStyleMinimal,
		Collapsible:    true,
	},
}

// DefaultLayoutSpecs returns the built-in layout table.
func DefaultLayoutSpecs() []LayoutSpec {
	out := make([]LayoutSpec, len(defaultLayoutSpecs))
	for i, spec := range defaultLayoutSpecs {
		out[i] = spec.clone()
	}
	return out
}

// viewLayouts maps detail views to the layout they render with.
var viewLayouts = map[View]LayoutType{
	ViewTraceability: LayoutComprehensive,
	ViewCustomer:     LayoutConsumer,
}
