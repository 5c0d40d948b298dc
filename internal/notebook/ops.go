package notebook

// Structural helpers layered on the Store primitives. These mirror the
// editing gestures (enter, tab, shift+tab, collapse) and always work from
// fresh snapshots so stale in-memory ordering can't corrupt the tree.

// AddSiblingAfter creates a new empty entry at the same level as curID,
// immediately after it. Returns the new id.
func (s *Store) AddSiblingAfter(curID string) (string, error) {
	cur, err := s.LoadEntry(curID)
	if err != nil {
		return "", err
	}

	if cur.ParentID == "" {
		roots, err := s.RootIDs()
		if err != nil {
			return "", err
		}
		return s.CreateEntry("", indexOf(roots, curID)+1)
	}

	parent, err := s.LoadEntry(cur.ParentID)
	if err != nil {
		return "", err
	}
	idx := indexOf(parent.Children, curID)
	if idx < 0 {
		idx = len(parent.Children) - 1
	}
	return s.CreateEntry(cur.ParentID, idx+1)
}

// IndentUnderPrevSibling makes curID the last child of its previous
// sibling, expanding that sibling if it was collapsed. No-op (false) when
// there is no previous sibling.
func (s *Store) IndentUnderPrevSibling(curID string) (bool, error) {
	cur, err := s.LoadEntry(curID)
	if err != nil {
		return false, err
	}

	var siblings []string
	if cur.ParentID == "" {
		siblings, err = s.RootIDs()
	} else {
		siblings, err = s.ListChildren(cur.ParentID)
	}
	if err != nil {
		return false, err
	}

	idx := indexOf(siblings, curID)
	if idx <= 0 {
		return false, nil
	}
	prevID := siblings[idx-1]

	prev, err := s.LoadEntry(prevID)
	if err != nil {
		return false, err
	}
	if prev.Collapsed {
		prev.Collapsed = false
		if err := s.SaveEntry(prev); err != nil {
			return false, err
		}
	}

	if err := s.SetParent(curID, prevID, len(prev.Children)); err != nil {
		return false, err
	}
	return true, nil
}

// OutdentToParentSibling moves curID up one level, placing it immediately
// after its old parent among the parent's siblings. No-op (false) for
// roots.
func (s *Store) OutdentToParentSibling(curID string) (bool, error) {
	cur, err := s.LoadEntry(curID)
	if err != nil {
		return false, err
	}
	if cur.ParentID == "" {
		return false, nil
	}

	parent, err := s.LoadEntry(cur.ParentID)
	if err != nil {
		return false, err
	}

	if parent.ParentID == "" {
		roots, err := s.RootIDs()
		if err != nil {
			return false, err
		}
		if err := s.SetParent(curID, "", indexOf(roots, parent.ID)+1); err != nil {
			return false, err
		}
		return true, nil
	}

	grand, err := s.LoadEntry(parent.ParentID)
	if err != nil {
		return false, err
	}
	if err := s.SetParent(curID, grand.ID, indexOf(grand.Children, parent.ID)+1); err != nil {
		return false, err
	}
	return true, nil
}

// SetCollapsed sets the collapsed flag. Returns true when the value
// actually changed.
func (s *Store) SetCollapsed(id string, collapsed bool) (bool, error) {
	e, err := s.LoadEntry(id)
	if err != nil {
		return false, err
	}
	if e.Collapsed == collapsed {
		return false, nil
	}
	e.Collapsed = collapsed
	if err := s.SaveEntry(e); err != nil {
		return false, err
	}
	return true, nil
}

// ToggleCollapsed flips the collapsed flag and returns the new value.
func (s *Store) ToggleCollapsed(id string) (bool, error) {
	e, err := s.LoadEntry(id)
	if err != nil {
		return false, err
	}
	e.Collapsed = !e.Collapsed
	if err := s.SaveEntry(e); err != nil {
		return false, err
	}
	return e.Collapsed, nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
