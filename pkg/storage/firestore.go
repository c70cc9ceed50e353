package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"github.com/sunwarden/sunwarden/pkg/log"
	"github.com/sunwarden/sunwarden/pkg/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreProvider implements the Database interface using Google Cloud
// Firestore. Documents are stored as JSON blobs so the Go structs stay the
// source of truth for the schema.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	// Project ID can be empty when inferred from the environment.
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// GetSettings retrieves the dynamic configuration from the "config/settings"
// document. A missing document means defaults with version 0.
func (f *FirestoreProvider) GetSettings(ctx context.Context) (types.Settings, int, error) {
	doc, err := f.client.Collection("config").Doc("settings").Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Settings{}, 0, nil
		}
		return types.Settings{}, 0, fmt.Errorf("failed to fetch settings doc: %w", err)
	}

	// Read version if available (default 0)
	var version int
	if v, err := doc.DataAt("version"); err == nil {
		if vInt, ok := v.(int64); ok {
			version = int(vInt)
		}
	}

	jsonStr, err := docJSON(ctx, doc.Ref.ID, doc)
	if err != nil {
		return types.Settings{}, 0, err
	}

	var s types.Settings
	if err := json.Unmarshal([]byte(jsonStr), &s); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal settings json", slog.Any("err", err))
		return types.Settings{}, 0, fmt.Errorf("failed to unmarshal settings json: %w", err)
	}
	return s, version, nil
}

// SetSettings saves the dynamic configuration to the "config/settings"
// document. It stores the settings as a JSON string for portability.
func (f *FirestoreProvider) SetSettings(ctx context.Context, settings types.Settings, version int) error {
	jsonBytes, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	_, err = f.client.Collection("config").Doc("settings").Set(ctx, map[string]interface{}{
		"json":    string(jsonBytes),
		"version": version,
	})
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// StoreSample adds a power sample to the "samples" collection as a JSON blob.
// The document ID is the RFC3339 timestamp for efficient range queries.
func (f *FirestoreProvider) StoreSample(ctx context.Context, sample types.PowerSample) error {
	jsonBytes, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}
	docID := sample.Timestamp.UTC().Format(time.RFC3339)
	_, err = f.client.Collection("samples").Doc(docID).Set(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"timestamp": sample.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to store sample: %w", err)
	}
	return nil
}

// InsertEvent adds a transition event to the "event_history" collection.
func (f *FirestoreProvider) InsertEvent(ctx context.Context, event types.TransitionEvent) error {
	jsonBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	// suffix the device so two devices transitioning on the same tick don't
	// collide on the timestamp doc ID
	docID := event.Timestamp.UTC().Format(time.RFC3339) + "_" + event.Device
	_, err = f.client.Collection("event_history").Doc(docID).Set(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"timestamp": event.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetSampleHistory retrieves samples within the specified time range.
// Uses document ID range queries for efficient filtering without reading all
// documents.
func (f *FirestoreProvider) GetSampleHistory(ctx context.Context, start, end time.Time) ([]types.PowerSample, error) {
	coll := f.client.Collection("samples")
	iter := coll.
		Where(firestore.DocumentID, ">=", coll.Doc(start.UTC().Format(time.RFC3339))).
		Where(firestore.DocumentID, "<", coll.Doc(end.UTC().Format(time.RFC3339))).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var samples []types.PowerSample
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating samples: %w", err)
		}

		jsonStr, err := docJSON(ctx, doc.Ref.ID, doc)
		if err != nil {
			return nil, err
		}

		var s types.PowerSample
		if err := json.Unmarshal([]byte(jsonStr), &s); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal sample", slog.String("docID", doc.Ref.ID), slog.Any("err", err))
			return nil, fmt.Errorf("failed to unmarshal sample (id=%s): %w", doc.Ref.ID, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// GetEventHistory retrieves transition events within the specified time range.
func (f *FirestoreProvider) GetEventHistory(ctx context.Context, start, end time.Time) ([]types.TransitionEvent, error) {
	coll := f.client.Collection("event_history")
	iter := coll.
		Where(firestore.DocumentID, ">=", coll.Doc(start.UTC().Format(time.RFC3339))).
		Where(firestore.DocumentID, "<", coll.Doc(end.UTC().Format(time.RFC3339))).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var events []types.TransitionEvent
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating events: %w", err)
		}

		jsonStr, err := docJSON(ctx, doc.Ref.ID, doc)
		if err != nil {
			return nil, err
		}

		var ev types.TransitionEvent
		if err := json.Unmarshal([]byte(jsonStr), &ev); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal event", slog.String("docID", doc.Ref.ID), slog.Any("err", err))
			return nil, fmt.Errorf("failed to unmarshal event (id=%s): %w", doc.Ref.ID, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// SaveDevice upserts a device definition in the "devices" collection, keyed
// by name.
func (f *FirestoreProvider) SaveDevice(ctx context.Context, config types.DeviceConfig) error {
	jsonBytes, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal device %s: %w", config.Name, err)
	}
	_, err = f.client.Collection("devices").Doc(config.Name).Set(ctx, map[string]interface{}{
		"json": string(jsonBytes),
	})
	if err != nil {
		return fmt.Errorf("failed to save device %s: %w", config.Name, err)
	}
	return nil
}

// DeleteDevice removes a device definition. Deleting an absent device is not
// an error.
func (f *FirestoreProvider) DeleteDevice(ctx context.Context, name string) error {
	_, err := f.client.Collection("devices").Doc(name).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete device %s: %w", name, err)
	}
	return nil
}

// ListDevices retrieves all device definitions.
func (f *FirestoreProvider) ListDevices(ctx context.Context) ([]types.DeviceConfig, error) {
	iter := f.client.Collection("devices").Documents(ctx)
	defer iter.Stop()

	var devices []types.DeviceConfig
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating devices: %w", err)
		}

		jsonStr, err := docJSON(ctx, doc.Ref.ID, doc)
		if err != nil {
			// Skip malformed documents
			continue
		}

		var config types.DeviceConfig
		if err := json.Unmarshal([]byte(jsonStr), &config); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal device", slog.String("device", doc.Ref.ID), slog.Any("err", err))
			continue
		}
		devices = append(devices, config)
	}
	return devices, nil
}

// docJSON extracts the "json" payload field every blob document carries.
func docJSON(ctx context.Context, docID string, doc *firestore.DocumentSnapshot) (string, error) {
	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "doc missing json", slog.String("docID", docID), slog.Any("err", err))
		return "", fmt.Errorf("document %s missing 'json' field: %w", docID, err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "doc json not string", slog.String("docID", docID))
		return "", fmt.Errorf("document %s 'json' field is not string", docID)
	}
	return jsonStr, nil
}
