package service

import (
	"github.com/fastmakeup/final-ver/model"
)

// MergeRemoteResult folds the remote analysis result into a locally
// built snapshot. Local records keep their ids; remote per-file
// enrichment is matched by filename, and remote file ids inside the
// project summary are rewritten to the matching local ids.
func MergeRemoteResult(snapshot *model.ProjectSnapshot, remote map[string]any) *model.ProjectSnapshot {
	merged := *snapshot

	if name, ok := remote["name"].(string); ok && name != "" {
		merged.Name = name
	}

	summary, ok := remote["summary"].(map[string]any)
	if !ok {
		summary = map[string]any{}
	}

	remoteByName := indexRemoteFiles(remote["files"])
	idMap := make(map[string]string)

	files := make([]*model.DocumentRecord, len(snapshot.Files))
	for i, local := range snapshot.Files {
		record := *local
		if remoteRec, ok := remoteByName[record.Name]; ok {
			if remoteID, ok := remoteRec["id"].(string); ok && remoteID != "" {
				idMap[remoteID] = record.ID
			}
			if text, ok := remoteRec["summary"].(string); ok && text != "" {
				record.Summary = text
			}
			if keywords := stringList(remoteRec["keywords"]); len(keywords) > 0 {
				record.Keywords = keywords
			}
			if parties := stringList(remoteRec["parties"]); len(parties) > 0 {
				record.Parties = parties
			}
		}
		files[i] = &record
	}
	merged.Files = files

	merged.Summary = remapFileIDs(summary, idMap).(map[string]any)
	return &merged
}

// indexRemoteFiles builds a filename index over the remote file list.
// The remote side may group files one folder level deep; children are
// flattened into the same index.
func indexRemoteFiles(raw any) map[string]map[string]any {
	index := make(map[string]map[string]any)

	list, ok := raw.([]any)
	if !ok {
		return index
	}
	for _, item := range list {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if children, ok := record["children"].([]any); ok {
			for _, child := range children {
				childRec, ok := child.(map[string]any)
				if !ok {
					continue
				}
				if name, ok := childRec["name"].(string); ok && name != "" {
					index[name] = childRec
				}
			}
			continue
		}
		if name, ok := record["name"].(string); ok && name != "" {
			index[name] = record
		}
	}
	return index
}

// remapFileIDs walks the value tree and rewrites remote file ids to
// local ones. Ids with no local counterpart pass through unchanged.
func remapFileIDs(value any, idMap map[string]string) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			if key == "fileId" {
				if id, ok := inner.(string); ok {
					if local, found := idMap[id]; found {
						out[key] = local
						continue
					}
				}
				out[key] = inner
				continue
			}
			if key == "relatedFileIds" {
				if ids, ok := inner.([]any); ok {
					mapped := make([]any, len(ids))
					for i, raw := range ids {
						if id, ok := raw.(string); ok {
							if local, found := idMap[id]; found {
								mapped[i] = local
								continue
							}
						}
						mapped[i] = raw
					}
					out[key] = mapped
					continue
				}
				out[key] = inner
				continue
			}
			out[key] = remapFileIDs(inner, idMap)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = remapFileIDs(inner, idMap)
		}
		return out
	default:
		return value
	}
}

func stringList(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
