// Package discovery tracks the flow and payment services installed on a
// device and aggregates their capabilities. The core protocol only consults
// it to validate that a target app or flow exists.
package discovery

import "strings"

// ServiceType distinguishes the two kinds of participating applications.
type ServiceType string

const (
	TypeFlowService    ServiceType = "flowService"
	TypePaymentService ServiceType = "paymentService"
)

// ServiceInfo describes one installed service and how to reach it.
type ServiceInfo struct {
	ID                    string      `json:"id"`
	Type                  ServiceType `json:"type"`
	DisplayName           string      `json:"displayName"`
	Vendor                string      `json:"vendor,omitempty"`
	Addr                  string      `json:"addr"`
	SupportedRequestTypes []string    `json:"supportedRequestTypes,omitempty"`
	SupportedCurrencies   []string    `json:"supportedCurrencies,omitempty"`
	PaymentMethods        []string    `json:"paymentMethods,omitempty"`
	SupportedDataKeys     []string    `json:"supportedDataKeys,omitempty"`
	SupportedFlowStages   []string    `json:"supportedFlowStages,omitempty"`
}

// Services aggregates a set of installed services and answers capability
// queries across them as a whole.
type Services struct {
	infos []ServiceInfo
}

func NewServices(infos []ServiceInfo) *Services {
	return &Services{infos: append([]ServiceInfo(nil), infos...)}
}

// All returns the aggregated services.
func (s *Services) All() []ServiceInfo {
	return append([]ServiceInfo(nil), s.infos...)
}

// ByID returns the service with the given id.
func (s *Services) ByID(id string) (ServiceInfo, bool) {
	for _, info := range s.infos {
		if info.ID == id {
			return info, true
		}
	}
	return ServiceInfo{}, false
}

// AllSupportedCurrencies returns the consolidated set of currencies supported
// by at least one service.
func (s *Services) AllSupportedCurrencies() []string {
	return s.union(func(info ServiceInfo) []string { return info.SupportedCurrencies })
}

// AllSupportedRequestTypes returns the consolidated set of request types.
func (s *Services) AllSupportedRequestTypes() []string {
	return s.union(func(info ServiceInfo) []string { return info.SupportedRequestTypes })
}

// AllSupportedPaymentMethods returns the consolidated set of payment methods.
func (s *Services) AllSupportedPaymentMethods() []string {
	return s.union(func(info ServiceInfo) []string { return info.PaymentMethods })
}

// AllSupportedDataKeys returns the consolidated set of AdditionalData keys.
func (s *Services) AllSupportedDataKeys() []string {
	return s.union(func(info ServiceInfo) []string { return info.SupportedDataKeys })
}

// IsCurrencySupported reports whether any service supports the currency.
func (s *Services) IsCurrencySupported(currency string) bool {
	return containsIgnoreCase(s.AllSupportedCurrencies(), currency)
}

// IsRequestTypeSupported reports whether any service supports the request
// type.
func (s *Services) IsRequestTypeSupported(requestType string) bool {
	return containsIgnoreCase(s.AllSupportedRequestTypes(), requestType)
}

// SupportingStage returns the services that can process the given flow stage.
func (s *Services) SupportingStage(stage string) []ServiceInfo {
	var out []ServiceInfo
	for _, info := range s.infos {
		if containsIgnoreCase(info.SupportedFlowStages, stage) {
			out = append(out, info)
		}
	}
	return out
}

func (s *Services) union(get func(ServiceInfo) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, info := range s.infos {
		for _, v := range get(info) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func containsIgnoreCase(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}
