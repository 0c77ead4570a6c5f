package domain

// StickerReferents returns the IDs of books and goals that hold a weak
// reference to the given sticker. Deleting a sticker must null these
// references so no record is left pointing at a sticker that fails to
// resolve; placed doodle elements are untouched since they embed a copy of
// the payload rather than a reference.
func StickerReferents(stickerID string, books []Book, goals []Goal) (bookIDs, goalIDs []string) {
	ref := StickerRef(stickerID)
	for i := range books {
		if books[i].StickerID == ref {
			bookIDs = append(bookIDs, books[i].ID)
		}
	}
	for i := range goals {
		if goals[i].RewardStickerID == ref {
			goalIDs = append(goalIDs, goals[i].ID)
		}
	}
	return bookIDs, goalIDs
}
