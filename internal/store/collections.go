package store

import (
	"sort"

	"github.com/localnerve/crmdb/internal/models"
	"github.com/localnerve/crmdb/internal/permissions"
)

// Collections, keyed by their storage names
var (
	Properties       = NewCollection[models.Property]("properties")
	Inquiries        = NewCollection[models.Inquiry]("inquiries")
	Tasks            = NewCollection[models.Task]("tasks").WithDefaults(taskDefaults)
	Deals            = NewCollection[models.Deal]("deals")
	Projects         = NewCollection[models.Project]("projects")
	Contacts         = NewCollection[models.Contact]("contacts")
	Loans            = NewCollection[models.Loan]("loans")
	Bookings         = NewCollection[models.Booking]("bookings")
	Transactions     = NewCollection[models.Transaction]("transactions")
	SubUsers         = NewCollection[models.SubUser]("subUsers")
	Campaigns        = NewCollection[models.Campaign]("campaigns")
	PaymentMethods   = NewCollection[models.PaymentMethod]("paymentMethods")
	ViewedProperties = NewCollection[models.ViewLog]("viewedProperties")
	ViewedInquiries  = NewCollection[models.ViewLog]("viewedInquiries")
	ActiveSessions   = NewCollection[models.Session]("activeSessions")
)

// Master-data lists
var (
	Areas         = NewCollection[models.MasterItem]("areas")
	SubTypes      = NewCollection[models.MasterItem]("subTypes")
	Societies     = NewCollection[models.MasterItem]("societies")
	Features      = NewCollection[models.MasterItem]("features")
	Amenities     = NewCollection[models.MasterItem]("amenities")
	Sources       = NewCollection[models.MasterItem]("sources")
	ContactGroups = NewCollection[models.MasterItem]("contactGroups")
	Commissions   = NewCollection[models.MasterItem]("commissions")
)

// Singletons
var (
	Permissions    = NewSingleton[permissions.Matrix]("permissions")
	UserProfile    = NewSingleton[models.UserProfile]("userProfile")
	AppSettings    = NewSingleton[models.AppSettings]("appSettings")
	DashboardNotes = NewSingleton[models.DashboardNotes]("dashboardNotes")
)

// schema is every key the store hydrates, in hydrate order
var schema = []entity{
	Properties, Inquiries, Tasks, Deals, Projects, Contacts, Loans, Bookings,
	Transactions, SubUsers, Campaigns, PaymentMethods, ViewedProperties,
	ViewedInquiries, ActiveSessions,
	Areas, SubTypes, Societies, Features, Amenities, Sources, ContactGroups, Commissions,
	Permissions, UserProfile, AppSettings, DashboardNotes,
}

var byName = func() map[string]entity {
	m := make(map[string]entity, len(schema))
	for _, e := range schema {
		m[e.Name()] = e
	}
	return m
}()

// records are the collections served by the generic record routes.
// subUsers is absent: its routes strip password hashes.
var records = map[string]Dynamic{
	Properties.Name():     Properties,
	Inquiries.Name():      Inquiries,
	Tasks.Name():          Tasks,
	Deals.Name():          Deals,
	Projects.Name():       Projects,
	Contacts.Name():       Contacts,
	Loans.Name():          Loans,
	Bookings.Name():       Bookings,
	Transactions.Name():   Transactions,
	Campaigns.Name():      Campaigns,
	PaymentMethods.Name(): PaymentMethods,
}

// masterLists are the master-data lists, by name
var masterLists = map[string]*Collection[models.MasterItem]{
	Areas.Name():         Areas,
	SubTypes.Name():      SubTypes,
	Societies.Name():     Societies,
	Features.Name():      Features,
	Amenities.Name():     Amenities,
	Sources.Name():       Sources,
	ContactGroups.Name(): ContactGroups,
	Commissions.Name():   Commissions,
}

// Lookup returns the record collection stored under name
func Lookup(name string) (Dynamic, bool) {
	c, ok := records[name]
	return c, ok
}

// RecordNames returns the names Lookup resolves, sorted
func RecordNames() []string {
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MasterList returns the master-data list stored under name
func MasterList(name string) (*Collection[models.MasterItem], bool) {
	c, ok := masterLists[name]
	return c, ok
}

// Names returns every storage key the store owns
func Names() []string {
	names := make([]string, 0, len(schema))
	for _, e := range schema {
		names = append(names, e.Name())
	}
	return names
}

func taskDefaults(t models.Task) models.Task {
	if t.Status == "" {
		t.Status = models.TaskStatusPending
	}
	return t
}
