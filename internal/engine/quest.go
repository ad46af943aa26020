package engine

// Quest tracks one objective line. Quests are never deleted; they only
// transition status.
type Quest struct {
	ID        string      `yaml:"id" json:"id"`
	Name      string      `yaml:"name" json:"name"`
	Objective string      `yaml:"objective" json:"objective"`
	Status    QuestStatus `yaml:"status" json:"status"`
	// Progress is a hidden narrative note the narrator maintains for itself.
	Progress string `yaml:"progress,omitempty" json:"progress,omitempty"`
}

// Key returns the identity used for merge matching: id when present,
// otherwise name.
func (q Quest) Key() string {
	if q.ID != "" {
		return q.ID
	}
	return q.Name
}

// MergeQuests folds externally supplied quest updates into the existing list.
// Matching is by id first, then by name. Unmatched updates are appended as new
// quests. A terminal status (completed/failed) is never reverted to active by
// an update. Returns the merged list plus the names of quests completed by
// this merge, so the caller can annotate the story text.
func MergeQuests(existing []Quest, updates []Quest) ([]Quest, []string) {
	merged := append([]Quest{}, existing...)
	var finished []string
	for _, up := range updates {
		if !up.Status.Validate() {
			up.Status = QuestActive
		}
		idx := findQuest(merged, up)
		if idx < 0 {
			if up.ID == "" {
				up.ID = up.Name
			}
			merged = append(merged, up)
			continue
		}
		cur := merged[idx]
		if cur.Status == QuestActive && up.Status == QuestCompleted {
			finished = append(finished, pickName(up, cur))
		}
		// Terminal statuses stick unless the update itself is terminal.
		if terminal(cur.Status) && up.Status == QuestActive {
			up.Status = cur.Status
		}
		if up.Name == "" {
			up.Name = cur.Name
		}
		if up.Objective == "" {
			up.Objective = cur.Objective
		}
		if up.Progress == "" {
			up.Progress = cur.Progress
		}
		up.ID = cur.ID
		if up.ID == "" {
			up.ID = up.Name
		}
		merged[idx] = up
	}
	return merged, finished
}

func findQuest(list []Quest, q Quest) int {
	if q.ID != "" {
		for i, e := range list {
			if e.ID == q.ID {
				return i
			}
		}
	}
	if q.Name != "" {
		for i, e := range list {
			if e.Name == q.Name {
				return i
			}
		}
	}
	return -1
}

func terminal(s QuestStatus) bool {
	return s == QuestCompleted || s == QuestFailed
}

func pickName(update, current Quest) string {
	if update.Name != "" {
		return update.Name
	}
	return current.Name
}
