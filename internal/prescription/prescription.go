// Package prescription turns a consultation into a structured prescription
// and renders it for sharing.
package prescription

import (
	"context"
	"fmt"
	"time"
)

type Medicine struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
}

// Draft is what the generation collaborator returns.
type Draft struct {
	Diagnosis    string     `json:"diagnosis"`
	Medicines    []Medicine `json:"medicines"`
	Instructions string     `json:"instructions"`
}

type Prescription struct {
	Diagnosis    string     `json:"diagnosis"`
	Medicines    []Medicine `json:"medicines"`
	Instructions string     `json:"instructions"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Generator is the remote prescription-generation collaborator.
type Generator interface {
	GeneratePrescription(ctx context.Context, transcript, diagnosis, lang string) (Draft, error)
}

type Assembler struct {
	gen Generator
	now func() time.Time
}

func NewAssembler(gen Generator) *Assembler {
	return &Assembler{gen: gen, now: time.Now}
}

// Generate calls the collaborator once and stamps the result. No retry.
func (a *Assembler) Generate(ctx context.Context, transcript, lastDiagnosis, lang string) (Prescription, error) {
	d, err := a.gen.GeneratePrescription(ctx, transcript, lastDiagnosis, lang)
	if err != nil {
		return Prescription{}, fmt.Errorf("generate prescription: %w", err)
	}
	return Prescription{
		Diagnosis:    d.Diagnosis,
		Medicines:    d.Medicines,
		Instructions: d.Instructions,
		CreatedAt:    a.now(),
	}, nil
}
