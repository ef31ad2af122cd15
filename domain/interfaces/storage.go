package interfaces

import "flow_navigator/domain/entities"

// ArtifactStore persists the artifacts of a run
type ArtifactStore interface {
	// Save writes the DOM history and action log and returns where they went
	Save(artifacts entities.Artifacts) (entities.ArtifactPaths, error)
}
