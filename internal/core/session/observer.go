package session

// Observer receives load lifecycle notifications. Every call happens on the
// goroutine that owns the session.
type Observer interface {
	OnLoadProgress(rowsRead, totalRows int)
	OnLoadComplete()
	OnLoadFailed(err error)
}

// ObserverFuncs adapts optional callbacks to Observer. Nil fields are
// skipped.
type ObserverFuncs struct {
	Progress func(rowsRead, totalRows int)
	Complete func()
	Failed   func(err error)
}

func (o ObserverFuncs) OnLoadProgress(rowsRead, totalRows int) {
	if o.Progress != nil {
		o.Progress(rowsRead, totalRows)
	}
}

func (o ObserverFuncs) OnLoadComplete() {
	if o.Complete != nil {
		o.Complete()
	}
}

func (o ObserverFuncs) OnLoadFailed(err error) {
	if o.Failed != nil {
		o.Failed(err)
	}
}
