package handler

import "net/http"

// Home sends visitors to the collection
func Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/games", http.StatusFound)
}
