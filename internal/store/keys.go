package store

// Key layout. Collections are namespaced per user so every read and write
// is scoped to exactly one account:
//
//	shelf:<userID>:books:<bookID>     -> domain.Book
//	shelf:<userID>:stickers:<id>      -> domain.Sticker
//	shelf:<userID>:goals:<id>         -> domain.Goal
//	shelf:<userID>:meta               -> userMeta
//	user:<userID>                     -> domain.User
//	useridx:email:<normalized email>  -> userID
const (
	shelfPrefix        = "shelf:"
	userPrefix         = "user:"
	userEmailIdxPrefix = "useridx:email:"
)

// collectionPrefix builds the key prefix for one user's collection.
func collectionPrefix(userID, collection string) string {
	return shelfPrefix + userID + ":" + collection + ":"
}

// metaKey builds the key of one user's meta document.
func metaKey(userID string) string {
	return shelfPrefix + userID + ":meta"
}
