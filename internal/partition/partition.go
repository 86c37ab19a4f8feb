// Package partition resolves which logical data partition a trigger event
// belongs to and exposes the Firestore collections rooted under it. All
// reads and writes made by a handler must stay within the partition inferred
// from the triggering event's path.
package partition

// Name identifies a logical data partition.
type Name string

const (
	// Default is the production partition.
	Default Name = "default"
	// Test isolates integration-test data from production data.
	Test Name = "test"
)

// FromParams maps the `partition` path parameter captured by a trigger to a
// partition name. Anything but "test" resolves to the default partition.
func FromParams(params map[string]string) Name {
	if params["partition"] == string(Test) {
		return Test
	}
	return Default
}

// IsTest reports whether the triggering event came from the test partition.
func IsTest(params map[string]string) bool {
	return FromParams(params) == Test
}
