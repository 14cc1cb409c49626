package db

import "gorm.io/gorm"

type Repositories struct {
	Users   *UserRepository
	Tokens  *RefreshTokenRepository
	Ratings *RatingRepository
	Groups  *GroupRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:   NewUserRepository(database),
		Tokens:  NewRefreshTokenRepository(database),
		Ratings: NewRatingRepository(database),
		Groups:  NewGroupRepository(database),
	}
}
