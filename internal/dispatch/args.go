package dispatch

import (
	"strconv"

	"github.com/ferrodb/ferrodb/internal/resp"
	"github.com/ferrodb/ferrodb/internal/store"
)

func parseInt(b []byte) (int, bool) {
	n, err := strconv.Atoi(string(b))
	return n, err == nil
}

func parseInt64(b []byte) (int64, bool) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	return n, err == nil
}

func parseFloat(b []byte) (float64, bool) {
	f, err := strconv.ParseFloat(string(b), 64)
	return f, err == nil
}

// formatFloat renders a score using the shortest decimal representation
// that round-trips to the same float64 (§7 open question on ZSCORE/ZRANGE
// WITHSCORES formatting).
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func bulkStrings(ss []string) resp.Reply {
	items := make([]resp.Reply, len(ss))
	for i, s := range ss {
		items[i] = resp.BulkString(s)
	}
	return resp.Array(items)
}

func bulkBytes(bs [][]byte) resp.Reply {
	items := make([]resp.Reply, len(bs))
	for i, b := range bs {
		if b == nil {
			items[i] = resp.NilBulk()
		} else {
			items[i] = resp.Bulk(b)
		}
	}
	return resp.Array(items)
}

// zMembersReply renders ZMember results, appending scores when withScores.
func zMembersReply(members []store.ZMember, withScores bool) resp.Reply {
	if !withScores {
		items := make([]resp.Reply, len(members))
		for i, m := range members {
			items[i] = resp.BulkString(m.Member)
		}
		return resp.Array(items)
	}
	items := make([]resp.Reply, 0, len(members)*2)
	for _, m := range members {
		items = append(items, resp.BulkString(m.Member), resp.BulkString(formatFloat(m.Score)))
	}
	return resp.Array(items)
}
