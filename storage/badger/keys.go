package badger

import "fmt"

// Key prefixes for different data types
const (
	grantRecordPrefix = "grarec"
)

// makeGrantKey generates a key for a grant by ID.
func makeGrantKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", grantRecordPrefix, id))
}

// grantScanPrefix returns the prefix covering every grant key.
func grantScanPrefix() []byte {
	return []byte(grantRecordPrefix + ":")
}
