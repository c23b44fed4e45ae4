package model

// DeployStatus is the immutable record of one deployment invocation.
type DeployStatus struct {
	Success        bool     `json:"success"`
	ReturnCode     int      `json:"returnCode"`
	Stdout         string   `json:"stdout"`
	Stderr         string   `json:"stderr"`
	ParsedResponse any      `json:"parsedResponse"`
	WrittenFiles   []string `json:"writtenFiles"`
	DeployCommand  string   `json:"deployCommand"`
	Message        string   `json:"message"`
}

const (
	DeployMessageSuccess = "Deployment validation successful"
	DeployMessageFailure = "Deployment validation failed"
)
