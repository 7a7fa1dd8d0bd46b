package teams

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mcdev12/friendlies/go/internal/models"
	"github.com/mcdev12/friendlies/go/internal/mongoutil"
)

const teamsCollection = "teams"

// teamDocument is the stored shape of a team
type teamDocument struct {
	ID              string    `bson:"_id"`
	Seq             int64     `bson:"seq"`
	Name            string    `bson:"name"`
	City            string    `bson:"city"`
	ExperienceLevel string    `bson:"experience_level"`
	ContactName     string    `bson:"contact_name"`
	Email           string    `bson:"email"`
	Phone           *string   `bson:"phone,omitempty"`
	PreferredDays   string    `bson:"preferred_days"`
	Description     *string   `bson:"description,omitempty"`
	LogoRef         *string   `bson:"logo_ref,omitempty"`
	HomeVenue       *string   `bson:"home_venue,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
}

// MongoRepository implements team data access on a MongoDB collection
type MongoRepository struct {
	collection *mongo.Collection
	seq        *mongoutil.Sequence
}

// NewMongoRepository creates a teams repository backed by db
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(teamsCollection),
		seq:        mongoutil.NewSequence(db, teamsCollection),
	}
}

var _ TeamsRepository = (*MongoRepository)(nil)

// EnsureIndexes creates the index that backs registration-order listing
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "seq", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create teams index: %w", err)
	}
	return nil
}

// CreateTeam inserts a team stamped with the next registration sequence number
func (r *MongoRepository) CreateTeam(ctx context.Context, team *models.Team) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	doc := teamDocument{
		ID:              team.ID.String(),
		Seq:             seq,
		Name:            team.Name,
		City:            team.City,
		ExperienceLevel: string(team.ExperienceLevel),
		ContactName:     team.ContactName,
		Email:           team.Email,
		Phone:           team.Phone,
		PreferredDays:   string(team.PreferredDays),
		Description:     team.Description,
		LogoRef:         team.LogoRef,
		HomeVenue:       team.HomeVenue,
		CreatedAt:       team.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

// GetTeam retrieves a team by ID
func (r *MongoRepository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var doc teamDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &models.NotFoundError{Resource: "team", ID: id}
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return docToTeam(doc)
}

// ListAllTeams returns every team in registration order
func (r *MongoRepository) ListAllTeams(ctx context.Context) ([]models.Team, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}

	var docs []teamDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode teams: %w", err)
	}

	teams := make([]models.Team, 0, len(docs))
	for _, doc := range docs {
		team, err := docToTeam(doc)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *team)
	}
	return teams, nil
}

func docToTeam(doc teamDocument) (*models.Team, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid team id %q: %w", doc.ID, err)
	}
	return &models.Team{
		ID:              id,
		Name:            doc.Name,
		City:            doc.City,
		ExperienceLevel: models.ExperienceLevel(doc.ExperienceLevel),
		ContactName:     doc.ContactName,
		Email:           doc.Email,
		Phone:           doc.Phone,
		PreferredDays:   models.PreferredDays(doc.PreferredDays),
		Description:     doc.Description,
		LogoRef:         doc.LogoRef,
		HomeVenue:       doc.HomeVenue,
		CreatedAt:       doc.CreatedAt.UTC(),
	}, nil
}
