package algo

import "github.com/codesight/codesight/schema"

// RankFiles returns the top 'limit' files of an already scored list.
// If limit is greater than the number of files, all files are returned.
func RankFiles(files []schema.FileStat, limit int) []schema.FileStat {
	if limit < 0 {
		limit = 0
	}
	if len(files) > limit {
		return files[:limit]
	}
	return files
}

// TopPaths returns the paths of the first n files.
func TopPaths(files []schema.FileStat, n int) []string {
	files = RankFiles(files, n)
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}
