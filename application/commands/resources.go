package commands

import (
	"errors"

	"trustie-admin/domain/core/entities"
)

// AddResourceCommand adds a knowledge base resource
type AddResourceCommand struct {
	Input entities.NewResourceInput
}

// Validate validates the AddResourceCommand
func (c AddResourceCommand) Validate() error {
	if c.Input.Title == "" {
		return errors.New("title is required")
	}
	return nil
}

// UpdateResourceCommand merges Patch into the resource keyed by
// (ResourceID, SK)
type UpdateResourceCommand struct {
	ResourceID string
	SK         string
	Patch      entities.ResourcePatch
}

// Validate validates the UpdateResourceCommand
func (c UpdateResourceCommand) Validate() error {
	if c.ResourceID == "" || c.SK == "" {
		return errors.New("resource ID and SK are required")
	}
	return c.Patch.Validate(c.ResourceID, c.SK)
}

// UploadKnowledgeFileCommand stores a file in the knowledge bucket
type UploadKnowledgeFileCommand struct {
	FileName    string
	ContentType string
	Body        []byte
}

// Validate validates the UploadKnowledgeFileCommand
func (c UploadKnowledgeFileCommand) Validate() error {
	if c.FileName == "" {
		return errors.New("file name is required")
	}
	if len(c.Body) == 0 {
		return errors.New("file is empty")
	}
	return nil
}

// UploadKnowledgeFileResult locates an uploaded knowledge file
type UploadKnowledgeFileResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
