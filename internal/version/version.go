// In file: internal/version/version.go

// Package version holds the versions of the assistant's logical components.
//
// The versions are part of every cache key, so bumping one invalidates every
// cached entry that depended on the old behaviour or data.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComponentVersions holds the version strings for different logical parts of the application.
// Manually increment a version number here before you deploy a change to that component.
var ComponentVersions = struct {
	// Tools changes when a tool's output format or logic changes.
	Tools string

	// CourseData changes whenever the ingested course materials change.
	CourseData string

	// PromptLogic changes with the system prompt or composition rules.
	PromptLogic string
}{
	Tools:       "v1.0",
	CourseData:  "v1.0",
	PromptLogic: "v1.0",
}

// GenerateVersionedCacheKey combines a prefix, a hash of the input and the
// current component versions.
//
// Example output: "searchcache:a1b2c3d4...:tv1.0_cv1.0_pv1.0"
func GenerateVersionedCacheKey(prefix, input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	inputHash := hex.EncodeToString(hasher.Sum(nil))

	versionString := fmt.Sprintf("tv%s_cv%s_pv%s",
		ComponentVersions.Tools,
		ComponentVersions.CourseData,
		ComponentVersions.PromptLogic,
	)
	return fmt.Sprintf("%s:%s:%s", prefix, inputHash, versionString)
}
