package course

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Module is a section of a course, stored in the "modules" collection.
type Module struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CourseID    string             `bson:"course_id,omitempty" json:"course_id,omitempty"`
	TopicIDs    []string           `bson:"topic_ids,omitempty" json:"topic_ids,omitempty"`
	Metadata    bson.M             `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// ContentRef links a topic to one content document in a given format.
type ContentRef struct {
	ContentID string `bson:"content_id" json:"content_id"`
	Format    string `bson:"format,omitempty" json:"format,omitempty"`
}

// Topic is a unit inside a module, stored in the "topics" collection.
type Topic struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	ModuleID        string             `bson:"module_id,omitempty" json:"module_id,omitempty"`
	Contents        []ContentRef       `bson:"contents,omitempty" json:"contents,omitempty"`
	QuestionBankIDs []string           `bson:"question_bank_ids,omitempty" json:"question_bank_ids,omitempty"`
}

// ContentVersion is one versioned payload of a content document.
// Data holds inline content; URL points at externally hosted content.
type ContentVersion struct {
	VersionID string `bson:"version_id" json:"version_id"`
	Type      string `bson:"type,omitempty" json:"type,omitempty"`
	Title     string `bson:"title" json:"title"`
	Data      string `bson:"data,omitempty" json:"data,omitempty"`
	URL       string `bson:"url,omitempty" json:"url,omitempty"`
	Metadata  bson.M `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// Content is a document in the "contents" collection.
type Content struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TopicID  string             `bson:"topic_id,omitempty" json:"topic_id,omitempty"`
	Versions []ContentVersion   `bson:"versions,omitempty" json:"versions,omitempty"`
}
