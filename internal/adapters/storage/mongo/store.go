package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/madhukiran/stylist-agent/internal/domain"
)

const connectTimeout = 5 * time.Second

// Store is the durable HistoryStore variant: one document per user in a
// single collection, replaced wholesale on every save.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewStore connects and pings the deployment so an unreachable server is
// detected at startup, where the caller can select the fallback store,
// rather than on the first request.
func NewStore(ctx context.Context, uri, database, collection string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ─────────────────────────────────────────
// Document types
// ─────────────────────────────────────────

type conversationDoc struct {
	UserID    string    `bson:"userId"`
	History   []turnDoc `bson:"history"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type turnDoc struct {
	Role  string    `bson:"role"`
	Parts []partDoc `bson:"parts"`
}

type partDoc struct {
	Text     string `bson:"text,omitempty"`
	MIMEType string `bson:"mimeType,omitempty"`
	Data     []byte `bson:"data,omitempty"`
}

// ─────────────────────────────────────────
// HistoryStore implementation
// ─────────────────────────────────────────

func (s *Store) Load(ctx context.Context, userID domain.UserID) (*domain.History, error) {
	var doc conversationDoc
	err := s.coll.FindOne(ctx, bson.M{"userId": string(userID)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongo load %q: %w", userID, err)
	}
	return fromDoc(doc), nil
}

func (s *Store) Save(ctx context.Context, h *domain.History) error {
	doc := toDoc(h)

	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"userId": doc.UserID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo save %q: %w", h.UserID, err)
	}
	return nil
}

func toDoc(h *domain.History) conversationDoc {
	doc := conversationDoc{
		UserID:    string(h.UserID),
		History:   make([]turnDoc, 0, len(h.Turns)),
		UpdatedAt: h.UpdatedAt,
	}
	for _, t := range h.Turns {
		td := turnDoc{Role: string(t.Role), Parts: make([]partDoc, 0, len(t.Parts))}
		for _, p := range t.Parts {
			td.Parts = append(td.Parts, partDoc{
				Text:     p.Text,
				MIMEType: p.MIMEType,
				Data:     p.Data,
			})
		}
		doc.History = append(doc.History, td)
	}
	return doc
}

func fromDoc(doc conversationDoc) *domain.History {
	h := &domain.History{
		UserID:    domain.UserID(doc.UserID),
		Turns:     make([]domain.Turn, 0, len(doc.History)),
		UpdatedAt: doc.UpdatedAt,
	}
	for _, td := range doc.History {
		t := domain.Turn{Role: domain.Role(td.Role), Parts: make([]domain.Part, 0, len(td.Parts))}
		for _, pd := range td.Parts {
			t.Parts = append(t.Parts, domain.Part{
				Text:     pd.Text,
				MIMEType: pd.MIMEType,
				Data:     pd.Data,
			})
		}
		h.Turns = append(h.Turns, t)
	}
	return h
}
