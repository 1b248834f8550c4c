package server

// Error codes returned in the "error" field of error payloads.
const (
	codeMissingQuery      = "missing_query"
	codeMissingParameters = "missing_parameters"
	codeServerError       = "server_error"
	codeDetectionFailed   = "detection_failed"
	codeMethodNotAllowed  = "method_not_allowed"
	codeNotFound          = "not_found"
)

const (
	exampleSearchURL   = "/api/search?query=blinding%20lights"
	exampleSongInfoURL = "/api/song-info?artist=The%20Weeknd&title=Blinding%20Lights"
)
