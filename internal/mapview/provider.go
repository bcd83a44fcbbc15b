package mapview

// Provider names the browser mapping SDK.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderMapbox Provider = "mapbox"
)

// SDKState is the load state of the mapping SDK reported by the page.
type SDKState string

const (
	SDKLoading SDKState = "loading"
	SDKReady   SDKState = "ready"
	SDKFailed  SDKState = "failed"
)

// Valid reports whether s is a known state.
func (s SDKState) Valid() bool {
	switch s {
	case SDKLoading, SDKReady, SDKFailed:
		return true
	}
	return false
}

// SDKStatus is shown inside the map panel only; a failed SDK never takes the
// rest of the dashboard down.
type SDKStatus struct {
	State  SDKState `json:"state"`
	Detail string   `json:"detail,omitempty"`
}

// Provider returns the configured mapping SDK.
func (a *Adapter) Provider() Provider {
	return a.provider
}

// ReportSDKStatus records the SDK load state sent by the page.
func (a *Adapter) ReportSDKStatus(st SDKStatus) {
	a.mu.Lock()
	a.sdk = st
	a.mu.Unlock()
	if st.State == SDKFailed {
		a.logger.Warn("map sdk failed to load", "provider", a.provider, "detail", st.Detail)
	}
}

// SDKStatus returns the last reported SDK load state.
func (a *Adapter) SDKStatus() SDKStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sdk
}
