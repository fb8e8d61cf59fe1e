package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/careconnect/healthcare-portal/internal/core/domain"
)

const collectionPrescriptions = "prescriptions"

type PrescriptionRepository struct {
	col *mongo.Collection
}

func NewPrescriptionRepository(db *mongo.Database) *PrescriptionRepository {
	return &PrescriptionRepository{col: db.Collection(collectionPrescriptions)}
}

type mongoMedication struct {
	Name      string `bson:"name"`
	Dosage    string `bson:"dosage"`
	Frequency string `bson:"frequency"`
	Duration  string `bson:"duration"`
}

type mongoPrescription struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	AppointmentID string             `bson:"appointment_id"`
	PatientID     string             `bson:"patient_id"`
	DoctorID      string             `bson:"doctor_id"`
	Medications   []mongoMedication  `bson:"medications"`
	Notes         string             `bson:"notes,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func (mp *mongoPrescription) toDomain() *domain.Prescription {
	medications := make([]domain.Medication, 0, len(mp.Medications))
	for _, m := range mp.Medications {
		medications = append(medications, domain.Medication{
			Name:      m.Name,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Duration:  m.Duration,
		})
	}
	return &domain.Prescription{
		ID:            mp.ID.Hex(),
		AppointmentID: mp.AppointmentID,
		PatientID:     mp.PatientID,
		DoctorID:      mp.DoctorID,
		Medications:   medications,
		Notes:         mp.Notes,
		CreatedAt:     mp.CreatedAt,
	}
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *domain.Prescription) (*domain.Prescription, error) {
	medications := make([]mongoMedication, 0, len(p.Medications))
	for _, m := range p.Medications {
		medications = append(medications, mongoMedication{
			Name:      m.Name,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Duration:  m.Duration,
		})
	}

	doc := mongoPrescription{
		AppointmentID: p.AppointmentID,
		PatientID:     p.PatientID,
		DoctorID:      p.DoctorID,
		Medications:   medications,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert prescription: %w", err)
	}

	created := *p
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *PrescriptionRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.Prescription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := r.col.Find(ctx, bson.M{"patient_id": patientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Prescription
	for cur.Next(ctx) {
		var mp mongoPrescription
		if err := cur.Decode(&mp); err != nil {
			return nil, fmt.Errorf("decode prescription: %w", err)
		}
		out = append(out, mp.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate prescriptions: %w", err)
	}
	return out, nil
}
