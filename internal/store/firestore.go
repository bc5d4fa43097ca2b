package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bookingpro/internal/models"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const bookingsCollection = "bookings"

// Firestore stores bookings in a Firestore "bookings" collection.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore initialises the Firebase app from a service-account file.
func NewFirestore(ctx context.Context, serviceAccountPath string) (*Firestore, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("firebase: init app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: firestore client: %w", err)
	}
	return &Firestore{client: client}, nil
}

// NewFirestoreWithClient wraps an existing client.
func NewFirestoreWithClient(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (s *Firestore) Create(ctx context.Context, b *models.Booking) (string, error) {
	ref, _, err := s.client.Collection(bookingsCollection).Add(ctx, b)
	if err != nil {
		return "", fmt.Errorf("firestore: add booking: %w", err)
	}
	b.ID = ref.ID
	return ref.ID, nil
}

func (s *Firestore) Get(ctx context.Context, id string) (*models.Booking, error) {
	doc, err := s.client.Collection(bookingsCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore: get booking %s: %w", id, err)
	}
	return decode(doc)
}

func (s *Firestore) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	q := s.client.Collection(bookingsCollection).Where("userId", "==", userID)
	bookings, err := collect(ctx, q)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(bookings)
	return bookings, nil
}

func (s *Firestore) List(ctx context.Context, f models.Filter) ([]models.Booking, error) {
	q := s.client.Collection(bookingsCollection).Query
	if f.UserID != "" {
		q = q.Where("userId", "==", f.UserID)
	}
	if f.Date != "" {
		q = q.Where("date", "==", f.Date)
	}
	if f.Status != "" {
		q = q.Where("status", "==", f.Status)
	}
	return collect(ctx, q)
}

func (s *Firestore) Cancel(ctx context.Context, id string) error {
	_, err := s.client.Collection(bookingsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: models.StatusCancelled},
		{Path: "cancelledAt", Value: firestore.ServerTimestamp},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("firestore: cancel booking %s: %w", id, err)
	}
	return nil
}

// Ping performs a cheap read to check connectivity.
func (s *Firestore) Ping(ctx context.Context) error {
	iter := s.client.Collection(bookingsCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

func (s *Firestore) Close() error {
	return s.client.Close()
}

func collect(ctx context.Context, q firestore.Query) ([]models.Booking, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []models.Booking
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore: query bookings: %w", err)
		}
		b, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, nil
}

func decode(doc *firestore.DocumentSnapshot) (*models.Booking, error) {
	var b models.Booking
	if err := doc.DataTo(&b); err != nil {
		return nil, fmt.Errorf("firestore: decode booking %s: %w", doc.Ref.ID, err)
	}
	b.ID = doc.Ref.ID
	return &b, nil
}

// sortNewestFirst orders by appointment date and time, latest first.
func sortNewestFirst(bookings []models.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].StartsAt(time.UTC).After(bookings[j].StartsAt(time.UTC))
	})
}
