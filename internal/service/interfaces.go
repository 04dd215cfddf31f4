package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mock_service

import (
	"context"

	"github.com/nurpe/snowops-contracts/internal/model"
)

type AuditSink interface {
	Record(ctx context.Context, entry model.AuditEntry) error
}

type DocumentRenderer interface {
	Generate(contract model.Contract, signers []model.Signer) ([]byte, error)
}

type DocumentStore interface {
	Put(ctx context.Context, key string, content []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type ExcelGenerator interface {
	Generate(report model.ContractReport) ([]byte, error)
}
