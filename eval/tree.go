package eval

import (
	"sort"

	"github.com/brodenix/recql"
	"github.com/brodenix/recql/table"
)

// buildForest is the structural half of join-tree assembly: given the
// composite pair nodes, it builds the undirected pair graph (edges
// connect pairs sharing a source table), decomposes it into a forest by
// a DFS that visits each pair key once, and returns the roots plus each
// node's children in canonical (lexicographic pair-key) order.
func buildForest(pairs map[string]*pairNode) (roots []string, children map[string][]string) {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	adjacency := make(map[string][]string, len(keys))
	for _, a := range keys {
		for _, b := range keys {
			if a == b {
				continue
			}
			if sharesTable(pairs[a].tables, pairs[b].tables) {
				adjacency[a] = append(adjacency[a], b)
			}
		}
	}
	for _, k := range keys {
		sort.Strings(adjacency[k])
	}

	visited := make(map[string]bool, len(keys))
	children = make(map[string][]string, len(keys))
	var dfs func(key string)
	dfs = func(key string) {
		visited[key] = true
		for _, nb := range adjacency[key] {
			if !visited[nb] {
				children[key] = append(children[key], nb)
				dfs(nb)
			}
		}
	}
	for _, k := range keys {
		if !visited[k] {
			roots = append(roots, k)
			dfs(k)
		}
	}
	return roots, children
}

func sharesTable(a, b [2]string) bool {
	return a[0] == b[0] || a[0] == b[1] || a[1] == b[0] || a[1] == b[1]
}

func sharedTable(a, b [2]string) string {
	for _, x := range a {
		if x == b[0] || x == b[1] {
			return x
		}
	}
	return ""
}

// resolveTree is the data half of join-tree assembly: for each tree
// (rooted at one of roots), it folds every child's rows into its parent
// by post-order
// DFS — intersecting on the shared source table's provenance column,
// composing the Cartesian product of matches across all of a node's
// children at once, and projecting back down to the node's own two
// provenance columns plus every term.cols value accumulated so far.
func resolveTree(eng *table.Engine, nameMap map[string]string, pairs map[string]*pairNode, roots []string, children map[string][]string) error {
	var visit func(key string) error
	visit = func(key string) error {
		kids := children[key]
		for _, ck := range kids {
			if err := visit(ck); err != nil {
				return err
			}
		}
		if len(kids) == 0 {
			return nil
		}
		return foldChildren(eng, nameMap, pairs[key], kids, pairs)
	}
	for _, r := range roots {
		if err := visit(r); err != nil {
			return err
		}
	}
	return nil
}

func foldChildren(eng *table.Engine, nameMap map[string]string, node *pairNode, childKeys []string, pairs map[string]*pairNode) error {
	type childCtx struct {
		prov string
		node *pairNode
	}
	ctxs := make([]childCtx, 0, len(childKeys))
	for _, ck := range childKeys {
		child := pairs[ck]
		tstar := sharedTable(node.tables, child.tables)
		ctxs = append(ctxs, childCtx{prov: child.provFor(tstar), node: child})
	}

	rows, err := drain(eng.GetAllRecords(node.name))
	if err != nil {
		return err
	}

	var composed []recql.Record
	for _, pr := range rows {
		matchLists := make([][]recql.Record, len(ctxs))
		ok := true
		for i, cx := range ctxs {
			v, has := pr[cx.prov]
			if !has {
				ok = false
				break
			}
			present, err := eng.HasValue(cx.node.name, cx.prov, v)
			if err != nil {
				return err
			}
			if !present {
				ok = false
				break
			}
			recs, err := drain(eng.GetRecsFromHash(cx.node.name, cx.prov, recql.OpEq, v))
			if err != nil {
				return err
			}
			matchLists[i] = recs
		}
		if !ok {
			continue
		}

		var build func(idx int, acc recql.Record)
		build = func(idx int, acc recql.Record) {
			if idx == len(matchLists) {
				composed = append(composed, acc)
				return
			}
			for _, cr := range matchLists[idx] {
				merged := acc.Clone()
				for k, v := range cr {
					merged[k] = v
				}
				build(idx+1, merged)
			}
		}
		build(0, pr.Clone())
	}

	keep := map[string]bool{
		node.provA: true,
		node.provB: true,
	}
	reduced := make([]recql.Record, 0, len(composed))
	for _, m := range composed {
		out := recql.Record{}
		for k, v := range m {
			if keep[k] || !recql.IsSyntheticColumn(k) {
				out[k] = v
			}
		}
		reduced = append(reduced, out)
	}

	cols := make([]string, 0, len(keep)+8)
	for k := range keep {
		cols = append(cols, k)
	}
	seen := map[string]bool{}
	for _, r := range reduced {
		for k := range r {
			if !keep[k] && !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}

	newName := table.RandomTableName("tree")
	if err := eng.AddTable(newName, cols); err != nil {
		return err
	}
	if err := eng.InsertRecords(newName, reduced); err != nil {
		return err
	}
	if err := eng.HashTable(newName, node.provA, true); err != nil {
		return err
	}
	if err := eng.HashTable(newName, node.provB, true); err != nil {
		return err
	}

	for _, cx := range ctxs {
		if err := eng.Drop(cx.node.name); err != nil {
			return err
		}
	}
	if err := eng.Drop(node.name); err != nil {
		return err
	}
	node.name = newName
	return nil
}
