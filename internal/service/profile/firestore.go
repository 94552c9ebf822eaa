package profile

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const profilesCollection = "profiles"

// firestoreProfile maps to Firestore document structure.
type firestoreProfile struct {
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Age       string    `firestore:"age"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (fp firestoreProfile) toProfile(id string) *Profile {
	return &Profile{
		ID:        id,
		Name:      fp.Name,
		Email:     fp.Email,
		Age:       fp.Age,
		CreatedAt: fp.CreatedAt,
		UpdatedAt: fp.UpdatedAt,
	}
}

// FirestoreStore implements Service using Firestore with transactions.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// List returns every profile ordered by creation time.
func (s *FirestoreStore) List(ctx context.Context) ([]Profile, error) {
	docs, err := s.client.Collection(profilesCollection).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, err
	}

	out := make([]Profile, 0, len(docs))
	for _, doc := range docs {
		var fp firestoreProfile
		if err := doc.DataTo(&fp); err != nil {
			return nil, err
		}
		out = append(out, *fp.toProfile(doc.Ref.ID))
	}
	return out, nil
}

// Get retrieves a profile by ID.
func (s *FirestoreStore) Get(ctx context.Context, id string) (*Profile, error) {
	doc, err := s.client.Collection(profilesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var fp firestoreProfile
	if err := doc.DataTo(&fp); err != nil {
		return nil, err
	}
	return fp.toProfile(id), nil
}

// Create stores a new profile under a generated document ID.
func (s *FirestoreStore) Create(ctx context.Context, params Params) (*Profile, error) {
	docRef := s.client.Collection(profilesCollection).NewDoc()
	params = params.normalized()
	now := time.Now().UTC()

	fp := firestoreProfile{
		Name:      params.Name,
		Email:     params.Email,
		Age:       params.Age,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return tx.Create(docRef, fp)
	})
	audit(ctx, "create", docRef.ID, err)
	if err != nil {
		return nil, err
	}
	return fp.toProfile(docRef.ID), nil
}

// Update replaces the writable fields using a transaction for atomicity.
func (s *FirestoreStore) Update(ctx context.Context, id string, params Params) (*Profile, error) {
	docRef := s.client.Collection(profilesCollection).Doc(id)
	params = params.normalized()

	var result *Profile

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}

		var fp firestoreProfile
		if err := doc.DataTo(&fp); err != nil {
			return err
		}

		fp.Name = params.Name
		fp.Email = params.Email
		fp.Age = params.Age
		fp.UpdatedAt = time.Now().UTC()

		if err := tx.Set(docRef, fp); err != nil {
			return err
		}

		result = fp.toProfile(id)
		return nil
	})
	audit(ctx, "update", id, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Compile-time interface check
var _ Service = (*FirestoreStore)(nil)
