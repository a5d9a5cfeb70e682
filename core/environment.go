package core

const (
	DevAPIBaseURL  = "https://dev-wallet.settopay.com"
	DevWebBaseURL  = "https://dev-app.settopay.com"
	ProdAPIBaseURL = "https://wallet.settopay.com"
	ProdWebBaseURL = "https://app.settopay.com"
)

// Endpoints pairs the host serving the payment web app with the host serving
// the backend API for one environment.
type Endpoints struct {
	WebBaseURL string
	APIBaseURL string
}

func ResolveEndpoints(env Environment) (Endpoints, bool) {
	switch env {
	case EnvironmentDev:
		return Endpoints{WebBaseURL: DevWebBaseURL, APIBaseURL: DevAPIBaseURL}, true
	case EnvironmentProd:
		return Endpoints{WebBaseURL: ProdWebBaseURL, APIBaseURL: ProdAPIBaseURL}, true
	default:
		return Endpoints{}, false
	}
}
