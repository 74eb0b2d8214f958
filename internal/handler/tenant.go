package handler

import "net/http"

// TenantHeader carries the organization scope of every request. The
// tenancy boundary itself (auth, membership) is enforced upstream of this
// service; here the header is taken at face value.
const TenantHeader = "X-Org-ID"

// tenantID extracts the tenant scope from a request, or "" when missing
func tenantID(r *http.Request) string {
	return r.Header.Get(TenantHeader)
}
