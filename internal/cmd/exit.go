// Package cmd provides command implementations for the ckan2csw CLI.
package cmd

// Exit codes returned by the ckan2csw binary.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates a record or model failed validation.
	ExitValidationError = 2

	// ExitConnectivityError indicates the source catalog could not be reached.
	ExitConnectivityError = 3

	// ExitNotFound indicates a file, record or index was not found.
	ExitNotFound = 5

	// ExitConfigError indicates the deployment is misconfigured.
	ExitConfigError = 7
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitConnectivityError:
		return "Connectivity Error"
	case ExitNotFound:
		return "Not Found"
	case ExitConfigError:
		return "Configuration Error"
	default:
		return "Unknown"
	}
}
