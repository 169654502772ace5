package store

// Notifier is implemented by the blocking coordinator. The list and stream
// stores hold one and call it after a mutation commits, so that parked
// BLPOP/XREAD BLOCK waiters are woken without the stores importing the
// coordinator package directly (spec §9: "notifier runs after the mutation
// is visible to the store read path").
type Notifier interface {
	NotifyListPush(key string)
	NotifyStreamAppend(key string)
}

type noopNotifier struct{}

func (noopNotifier) NotifyListPush(string)    {}
func (noopNotifier) NotifyStreamAppend(string) {}
