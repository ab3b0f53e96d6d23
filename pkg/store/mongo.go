package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
	"github.com/patchbaylabs/patchbay/pkg/errors"
	"github.com/patchbaylabs/patchbay/pkg/observability"
)

// Mongo stores documents in a MongoDB collection. The canvas body is
// kept as canonical JSON bytes so the tagged-union node encoding stays
// authoritative; metadata fields are stored alongside it so listings
// never load document bodies.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

const mongoCollection = "documents"

// mongoRecord is the stored shape of a Record.
type mongoRecord struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
	Nodes       int       `bson:"nodes"`
	Connections int       `bson:"connections"`
	Document    []byte    `bson:"document"`
}

// NewMongo connects to the MongoDB deployment at uri and verifies the
// connection with a ping.
func NewMongo(ctx context.Context, uri, db string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.CodeStoreUnavailable, err, "connect to mongodb at %s", uri)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.CodeStoreUnavailable, err, "ping mongodb at %s", uri)
	}
	return &Mongo{
		client: client,
		coll:   client.Database(db).Collection(mongoCollection),
	}, nil
}

// Get implements Store.
func (m *Mongo) Get(ctx context.Context, id string) (*Record, error) {
	start := time.Now()
	var rec *Record
	err := RetryWithBackoff(ctx, func() error {
		var mr mongoRecord
		err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mr)
		if err == mongo.ErrNoDocuments {
			return notFound(id)
		}
		if err != nil {
			return &RetryableError{Err: err}
		}
		doc, err := canvas.Unmarshal(mr.Document)
		if err != nil {
			return errors.Wrap(errors.CodeInvalidDocument, err, "parse document %s", id)
		}
		rec = &Record{
			ID:        mr.ID,
			Name:      mr.Name,
			CreatedAt: mr.CreatedAt,
			UpdatedAt: mr.UpdatedAt,
			Document:  doc,
		}
		return nil
	})
	observability.Store().OnGet(ctx, "mongo", id, err == nil, time.Since(start))
	if err != nil {
		return nil, wrapRetryExhausted(err, "get document %s", id)
	}
	return rec, nil
}

// Put implements Store.
func (m *Mongo) Put(ctx context.Context, rec *Record) error {
	start := time.Now()
	if prev, err := m.Get(ctx, rec.ID); err == nil {
		stamp(rec, &prev.CreatedAt)
	} else {
		stamp(rec, nil)
	}
	data, err := canvas.Marshal(rec.Document)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "encode document %s", rec.ID)
	}
	mr := mongoRecord{
		ID:          rec.ID,
		Name:        rec.Name,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		Nodes:       len(rec.Document.Nodes),
		Connections: len(rec.Document.Connections),
		Document:    data,
	}
	err = RetryWithBackoff(ctx, func() error {
		opts := options.Replace().SetUpsert(true)
		if _, err := m.coll.ReplaceOne(ctx, bson.M{"_id": mr.ID}, mr, opts); err != nil {
			return &RetryableError{Err: err}
		}
		return nil
	})
	err = wrapRetryExhausted(err, "put document %s", rec.ID)
	observability.Store().OnPut(ctx, "mongo", rec.ID, time.Since(start), err)
	return err
}

// Delete implements Store.
func (m *Mongo) Delete(ctx context.Context, id string) error {
	err := RetryWithBackoff(ctx, func() error {
		if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			return &RetryableError{Err: err}
		}
		return nil
	})
	err = wrapRetryExhausted(err, "delete document %s", id)
	observability.Store().OnDelete(ctx, "mongo", id, err)
	return err
}

// List implements Store. Document bodies are projected out.
func (m *Mongo) List(ctx context.Context) ([]Info, error) {
	var infos []Info
	err := RetryWithBackoff(ctx, func() error {
		opts := options.Find().SetProjection(bson.M{"document": 0})
		cur, err := m.coll.Find(ctx, bson.M{}, opts)
		if err != nil {
			return &RetryableError{Err: err}
		}
		defer cur.Close(ctx)
		infos = infos[:0]
		for cur.Next(ctx) {
			var mr mongoRecord
			if err := cur.Decode(&mr); err != nil {
				return errors.Wrap(errors.CodeStoreUnavailable, err, "decode listing")
			}
			infos = append(infos, Info{
				ID:          mr.ID,
				Name:        mr.Name,
				CreatedAt:   mr.CreatedAt,
				UpdatedAt:   mr.UpdatedAt,
				Nodes:       mr.Nodes,
				Connections: mr.Connections,
			})
		}
		if err := cur.Err(); err != nil {
			return &RetryableError{Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, wrapRetryExhausted(err, "list documents")
	}
	sortInfos(infos)
	return infos, nil
}

// Close implements Store.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

var _ Store = (*Mongo)(nil)
