package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Publisher --dir ../usecase --output usecase --outpkg usecasemock --filename publisher_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name SnapshotRepository --dir ../domain/league --output domain/league --outpkg leaguemock --filename snapshot_repository_mock.go
