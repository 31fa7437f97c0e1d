package model

// Observer receives tree model change notifications. Structural
// changes are bracketed: the AboutToBe variant fires before the
// mutation, its counterpart after, so observers may snapshot state at
// announce time.
type Observer interface {
	ModelAboutToBeReset()
	ModelReset()
	RowsAboutToBeInserted(parent NodeID, first, last int)
	RowsInserted(parent NodeID, first, last int)
	RowsAboutToBeRemoved(parent NodeID, first, last int)
	RowsRemoved(parent NodeID, first, last int)
	// FavoriteAdded fires once the Favorites subtree has settled
	// after a repopulation, even when it ended up empty.
	FavoriteAdded()
}

// BaseObserver is a no-op Observer for embedding.
type BaseObserver struct{}

func (BaseObserver) ModelAboutToBeReset() {}

func (BaseObserver) ModelReset() {}

func (BaseObserver) RowsAboutToBeInserted(parent NodeID, first, last int) {}

func (BaseObserver) RowsInserted(parent NodeID, first, last int) {}

func (BaseObserver) RowsAboutToBeRemoved(parent NodeID, first, last int) {}

func (BaseObserver) RowsRemoved(parent NodeID, first, last int) {}

func (BaseObserver) FavoriteAdded() {}
