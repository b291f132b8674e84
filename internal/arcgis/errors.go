package arcgis

import "fmt"

// RemoteError is a non-2xx answer to a direct data query. These are
// user-triggered and must surface with the remote status attached, never
// be swallowed.
type RemoteError struct {
	URL    string
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote query failed: %s returned %d: %s", e.URL, e.Status, e.Body)
}

// ServerError is an error the ArcGIS server reports in-band: HTTP 200 with
// an "error" object in the JSON body.
type ServerError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("arcgis server error %d: %s", e.Code, e.Message)
}
