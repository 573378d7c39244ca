package component

// ReloadRequest is a short-lived entity asking the reload system to pick
// up a changed prefab, script or level file.
type ReloadRequest struct {
	Path string
}

var ReloadRequestComponent = NewComponent[ReloadRequest]()
