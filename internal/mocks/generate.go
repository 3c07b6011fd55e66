package mocks

//go:generate mockery --name TransactionStore --srcpkg github.com/spendlens/spendlens/internal/core/storage --output ./storage --outpkg storagemocks
