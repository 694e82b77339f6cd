package staff

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pkgerrors "github.com/campuskeep/staffdir-backend/pkg/errors"
)

const (
	staffCollection = "staff"
	usersCollection = "users"
)

// Repository gives typed access to the staff and users collections.
type Repository struct {
	client *firestore.Client
}

func NewRepository(client *firestore.Client) (*Repository, error) {
	if client == nil {
		return nil, errors.New("firestore client required")
	}
	return &Repository{client: client}, nil
}

func (r *Repository) GetStaff(ctx context.Context, id string) (*Record, error) {
	snap, err := r.client.Collection(staffCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "staff member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching staff member")
	}
	return decodeStaff(snap)
}

func (r *Repository) ListStaff(ctx context.Context) ([]Record, error) {
	iter := r.client.Collection(staffCollection).Documents(ctx)
	defer iter.Stop()

	records := []Record{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing staff")
		}
		record, err := decodeStaff(snap)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// FindStaffByEmail returns the first roster entry matching the email, or a
// not-found error.
func (r *Repository) FindStaffByEmail(ctx context.Context, email string) (*Record, error) {
	iter := r.client.Collection(staffCollection).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no staff record found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "querying staff by email")
	}
	return decodeStaff(snap)
}

// SetStaff writes the full record at the given key.
func (r *Repository) SetStaff(ctx context.Context, id string, record Record) error {
	if _, err := r.client.Collection(staffCollection).Doc(id).Set(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing staff member")
	}
	return nil
}

// StaffExists reports whether a document is present at the key.
func (r *Repository) StaffExists(ctx context.Context, id string) (bool, error) {
	_, err := r.client.Collection(staffCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking staff member")
	}
	return true, nil
}

// UpdateStaffType mutates only the type field, failing when the document
// does not exist.
func (r *Repository) UpdateStaffType(ctx context.Context, id, staffType string) error {
	_, err := r.client.Collection(staffCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "type", Value: staffType},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "staff member not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating staff type")
	}
	return nil
}

func (r *Repository) DeleteStaff(ctx context.Context, id string) error {
	if _, err := r.client.Collection(staffCollection).Doc(id).Delete(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting staff member")
	}
	return nil
}

// MaxSerial scans the roster for the largest integer slNo. Zero means the
// roster is empty or nothing parsed.
func (r *Repository) MaxSerial(ctx context.Context) (int, error) {
	records, err := r.ListStaff(ctx)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, record := range records {
		if n, ok := record.SerialNumber(); ok && n > max {
			max = n
		}
	}
	return max, nil
}

// BatchEntry pairs a document key with its record. An empty ID lets the
// store pick one.
type BatchEntry struct {
	ID     string
	Record Record
}

// BatchUpsert writes every entry in one batched commit. Full overwrite of
// the mapped fields with server-assigned timestamps.
func (r *Repository) BatchUpsert(ctx context.Context, entries []BatchEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := r.client.Batch()
	collection := r.client.Collection(staffCollection)
	for _, entry := range entries {
		ref := collection.NewDoc()
		if entry.ID != "" {
			ref = collection.Doc(entry.ID)
		}
		batch.Set(ref, entry.Record)
	}
	if _, err := batch.Commit(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "committing staff batch")
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, uid string) (*User, error) {
	snap, err := r.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching user record")
	}
	var user User
	if err := snap.DataTo(&user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding user record")
	}
	user.UID = snap.Ref.ID
	return &user, nil
}

// IsAdmin reads the caller's user record and reports the admin flag. A
// missing record surfaces as a not-found error for the gate to translate.
func (r *Repository) IsAdmin(ctx context.Context, uid string) (bool, error) {
	user, err := r.GetUser(ctx, uid)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

func (r *Repository) SetUser(ctx context.Context, uid string, user User) error {
	if _, err := r.client.Collection(usersCollection).Doc(uid).Set(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing user record")
	}
	return nil
}

func (r *Repository) DeleteUser(ctx context.Context, uid string) error {
	if _, err := r.client.Collection(usersCollection).Doc(uid).Delete(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting user record")
	}
	return nil
}

func decodeStaff(snap *firestore.DocumentSnapshot) (*Record, error) {
	var record Record
	if err := snap.DataTo(&record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("decoding staff document %s", snap.Ref.ID))
	}
	record.ID = snap.Ref.ID
	return &record, nil
}
