// Package api is the HTTP client for the remote analysis service.
//
// Endpoints consumed:
//
//	POST   /api/predict (or /predict)   multipart field "file"
//	GET    /api/history
//	DELETE /api/delete/{id}
//	GET    /static/uploads/{id}/overlay.png   existence probe only
//
// Every call runs under its own deadline and fails with a *TimeoutError when
// the deadline expires. Failures are reported through the error taxonomy in
// errors.go so that callers can tell a rejected request (*TransportError) from
// a well-formed response carrying an "error" field (*DomainError).
package api
