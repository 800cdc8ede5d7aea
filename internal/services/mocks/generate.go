package mocks

//go:generate go run github.com/golang/mock/mockgen -destination=mock_user_profiles_repository.go -package=mocks github.com/wongmatt93/untitled-movie-project-backend/internal/services UserProfilesRepository
//go:generate go run github.com/golang/mock/mockgen -destination=mock_movie_metadata_repository.go -package=mocks github.com/wongmatt93/untitled-movie-project-backend/internal/services MovieMetadataRepository
//go:generate go run github.com/golang/mock/mockgen -destination=mock_movie_source.go -package=mocks github.com/wongmatt93/untitled-movie-project-backend/internal/services MovieSource
