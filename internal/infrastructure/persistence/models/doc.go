// Package models contains the GORM persistence models. Domain aggregates
// carry no ORM tags; repositories map between the two with the
// ToDomain / XxxModelFromDomain pairs defined here.
package models

// All lists every model in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&OrganizationModel{},
		&BranchModel{},
		&CustomerModel{},
		&ArticleModel{},
		&UserModel{},
		&RateContractModel{},
		&RateSlabModel{},
		&BookingModel{},
		&BookingArticleModel{},
		&BookingStatusHistoryModel{},
		&LRSequenceModel{},
		&OutboxEntryModel{},
	}
}
