package grocery

import "errors"

// ErrNoList is returned when edits are applied before a list was built.
var ErrNoList = errors.New("grocery list not generated yet")

// ApplyEdits partitions list into the items to buy and the items already in
// the pantry. An item named in both alreadyHave and dontWant lands in the
// pantry and is dropped from the approved items. list is not modified.
func ApplyEdits(list *List, alreadyHave, dontWant []string) (ApprovedList, error) {
	if list == nil {
		return ApprovedList{}, ErrNoList
	}

	have := NameSet(alreadyHave)
	unwanted := NameSet(dontWant)

	approved := ApprovedList{
		ApprovedItems: make([]Entry, 0, len(list.Items)),
		PantryItems:   make([]Entry, 0, len(alreadyHave)),
		RemovedItems:  make([]string, 0, len(dontWant)),
	}
	for _, item := range list.Items {
		name := Normalize(item.Name)
		if !unwanted[name] {
			approved.ApprovedItems = append(approved.ApprovedItems, item)
		}
		if have[name] {
			approved.PantryItems = append(approved.PantryItems, item)
		}
	}
	approved.RemovedItems = append(approved.RemovedItems, dontWant...)
	return approved, nil
}
