package permissions

// collectionModules gates each record collection by a module. Transactions
// follow bookings and campaigns follow properties, as on the UI screens.
var collectionModules = map[string]string{
	"properties":     Properties,
	"inquiries":      Inquiries,
	"deals":          Deals,
	"contacts":       Contacts,
	"loans":          Loans,
	"tasks":          Tasks,
	"projects":       Projects,
	"bookings":       Bookings,
	"transactions":   Bookings,
	"subUsers":       Users,
	"paymentMethods": PaymentDetails,
	"campaigns":      Properties,
}

// ModuleFor returns the module that gates a record collection
func ModuleFor(collection string) (string, bool) {
	m, ok := collectionModules[collection]
	return m, ok
}
