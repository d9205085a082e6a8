package ckan

import "github.com/catalogbridge/ckan2csw/internal/dataset"

// AllowedTypes are the record categories harvested into the index.
var AllowedTypes = map[string]bool{
	"dataset": true,
	"series":  true,
	"service": true,
}

// DCATType returns the normalized category of record.
func DCATType(record map[string]any) string {
	return dataset.DCATType(record)
}

// Allowed reports whether records of dcatType are harvested.
func Allowed(dcatType string) bool {
	return AllowedTypes[dcatType]
}
