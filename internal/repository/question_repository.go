package repository

import (
	"context"
	"encoding/json"

	"studyquiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// QuestionDoc is the stored form of a curated-pool question. The answer is
// kept in whatever encoding the author used (letter, text or numeric
// string); resolution happens in the normalizer like every other producer.
type QuestionDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FieldKey    string             `bson:"field_key" json:"field_key"`
	Content     string             `bson:"content" json:"content"`
	Choices     []string           `bson:"choices" json:"choices"`
	Answer      string             `bson:"answer" json:"answer"`
	Explanation string             `bson:"explanation,omitempty" json:"explanation,omitempty"`
	Difficulty  string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Subject     string             `bson:"subject,omitempty" json:"subject,omitempty"`
}

// Raw converts the stored doc into the normalizer's input shape.
func (d *QuestionDoc) Raw() models.RawQuestion {
	answer, _ := json.Marshal(d.Answer)
	return models.RawQuestion{
		ID:          d.ID.Hex(),
		Content:     d.Content,
		Choices:     d.Choices,
		Answer:      answer,
		Explanation: d.Explanation,
		Difficulty:  d.Difficulty,
		Subject:     d.Subject,
		Source:      string(models.OriginPool),
	}
}

type QuestionRepository struct {
	Col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{Col: db.Collection("questions")}
}

func (r *QuestionRepository) FindByField(ctx context.Context, fieldKey string) ([]QuestionDoc, error) {
	cursor, err := r.Col.Find(ctx, bson.M{"field_key": fieldKey})
	if err != nil {
		return nil, err
	}
	var docs []QuestionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *QuestionRepository) FindAll(ctx context.Context) ([]QuestionDoc, error) {
	cursor, err := r.Col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var docs []QuestionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *QuestionRepository) Insert(ctx context.Context, doc *QuestionDoc) error {
	res, err := r.Col.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}
