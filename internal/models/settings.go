package models

// AppSettings is the company-wide settings singleton
type AppSettings struct {
	CompanyName       string `json:"companyName"`
	Website           string `json:"website,omitempty"`
	Language          string `json:"language,omitempty"`
	EmailNotifs       bool   `json:"emailNotifs"`
	SMSNotifs         bool   `json:"smsNotifs"`
	LeadAlerts        bool   `json:"leadAlerts"`
	WhatsappEnabled   bool   `json:"whatsappEnabled"`
	WhatsappNumber    string `json:"whatsappNumber"`
	WhatsappTemplate  string `json:"whatsappTemplate"`
	WhatsappConnected bool   `json:"whatsappConnected"`
	CompanyLogo       string `json:"companyLogo"`
	AppLogoURL        string `json:"appLogoUrl"`
	SubscriberLogoURL string `json:"subscriberLogoUrl"`
}

// DashboardNotes holds the three sticky notes on the dashboard
type DashboardNotes struct {
	Note1 string `json:"1"`
	Note2 string `json:"2"`
	Note3 string `json:"3"`
}
