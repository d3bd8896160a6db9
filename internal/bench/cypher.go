package bench

import "strconv"

// cypherCatalogue renders the catalogue for Neo4j and Memgraph. Both take bound
// parameters; they differ only in shortest-path syntax. Vertex keys are matched on
// the indexed "key" property.
func cypherCatalogue(o Options, memgraph bool) []Query {
	shortest := `
		MATCH (a:Customer {key: $from}), (b:Customer {key: $to})
		MATCH p = shortestPath((a)-[*..8]-(b))
		RETURN length(p) AS hops`
	if memgraph {
		shortest = `
		MATCH (a:Customer {key: $from}), (b:Customer {key: $to})
		MATCH p = (a)-[*BFS ..8]-(b)
		RETURN size(relationships(p)) AS hops`
	}

	return []Query{
		{
			ID: "A1", Category: CategorySelection,
			Description: "Non-indexed selection: supplier by name",
			Text: `
		MATCH (s:Supplier)
		WHERE s.name = $name
		RETURN s.suppkey AS suppkey, s.name AS name, s.address AS address, s.phone AS phone`,
			Params: map[string]any{"name": o.SupplierName},
		},
		{
			ID: "A2", Category: CategorySelection,
			Description: "Non-indexed range selection: orders by date",
			Text: `
		MATCH (o:Order)
		WHERE o.orderdate >= $from AND o.orderdate <= $to
		RETURN o.orderkey AS orderkey, o.orderdate AS orderdate, o.totalprice AS totalprice`,
			Params:    map[string]any{"from": o.DateFrom, "to": o.DateTo},
			CountOnly: true,
		},
		{
			ID: "A3", Category: CategorySelection,
			Description: "Indexed selection: supplier by key",
			Text: `
		MATCH (s:Supplier {key: $key})
		RETURN s.suppkey AS suppkey, s.name AS name, s.address AS address, s.phone AS phone`,
			Params: map[string]any{"key": strconv.FormatInt(o.SupplierKey, 10)},
		},
		{
			ID: "A4", Category: CategorySelection,
			Description: "Indexed range selection: orders by customer key",
			Text: `
		MATCH (o:Order)
		WHERE o.custkey >= $lo AND o.custkey <= $hi
		RETURN o.orderkey AS orderkey, o.orderdate AS orderdate, o.totalprice AS totalprice`,
			Params:    map[string]any{"lo": o.CustomerFrom, "hi": o.CustomerTo},
			CountOnly: true,
		},
		{
			ID: "B1", Category: CategoryAggregation,
			Description: "COUNT: parts per brand",
			Text: `
		MATCH (p:Part)
		RETURN p.brand AS brand, count(p) AS product_count
		ORDER BY product_count DESC`,
		},
		{
			ID: "B2", Category: CategoryAggregation,
			Description: "MAX: most expensive part per brand",
			Text: `
		MATCH (p:Part)
		RETURN p.brand AS brand, max(p.retailprice) AS max_price
		ORDER BY max_price DESC`,
		},
		{
			ID: "B3", Category: CategoryAggregation,
			Description: "MIN: lowest customer balance per market segment",
			Text: `
		MATCH (c:Customer)
		RETURN c.mktsegment AS segment, min(c.acctbal) AS min_acctbal
		ORDER BY min_acctbal`,
		},
		{
			ID: "C1", Category: CategoryJoin,
			Description: "Equi-join: customers with their orders since a date",
			Text: `
		MATCH (c:Customer)-[:PLACED]->(o:Order)
		WHERE o.orderdate >= $from
		RETURN c.name AS customer, o.orderkey AS orderkey, o.totalprice AS totalprice`,
			Params:    map[string]any{"from": o.DateFrom},
			CountOnly: true,
		},
		{
			ID: "C2", Category: CategoryJoin,
			Description: "Multi-hop join: revenue per nation of a region",
			Text: `
		MATCH (r:Region {name: $region})<-[:BELONGS_TO]-(n:Nation)<-[:LOCATED_IN]-(:Customer)
		      -[:PLACED]->(:Order)-[:CONTAINS]->(l:LineItem)
		RETURN n.name AS nation, sum(l.extendedprice * (1 - l.discount)) AS revenue
		ORDER BY revenue DESC`,
			Params: map[string]any{"region": o.Region},
		},
		{
			ID: "D1", Category: CategoryTraversal,
			Description: "Neighbourhood: parts offered by a supplier",
			Text: `
		MATCH (s:Supplier {key: $key})<-[:SUPPLIED_BY]-(:PartSupp)-[:OF_PART]->(p:Part)
		RETURN p.partkey AS partkey, p.name AS name`,
			Params: map[string]any{"key": strconv.FormatInt(o.SupplierKey, 10)},
		},
		{
			ID: "D2", Category: CategoryTraversal,
			Description: "Shortest path between two customers",
			Text:        shortest,
			Params: map[string]any{
				"from": strconv.FormatInt(o.CustomerFrom, 10),
				"to":   strconv.FormatInt(o.CustomerFrom+1, 10),
			},
		},
		{
			ID: "E1", Category: CategorySet,
			Description: "Union: customer and supplier names of a nation",
			Text: `
		MATCH (c:Customer)-[:LOCATED_IN]->(:Nation {key: $nation})
		RETURN c.name AS name
		UNION
		MATCH (s:Supplier)-[:LOCATED_IN]->(:Nation {key: $nation})
		RETURN s.name AS name`,
			Params:    map[string]any{"nation": strconv.FormatInt(o.NationKey, 10)},
			CountOnly: true,
		},
		{
			ID: "E2", Category: CategorySet,
			Description: "Intersection: nations with both customers and suppliers",
			Text: `
		MATCH (n:Nation)
		WHERE (n)<-[:LOCATED_IN]-(:Customer) AND (n)<-[:LOCATED_IN]-(:Supplier)
		RETURN n.name AS name
		ORDER BY name`,
		},
		{
			ID: "E3", Category: CategorySet,
			Description: "Difference: nations with customers but no suppliers",
			Text: `
		MATCH (n:Nation)
		WHERE (n)<-[:LOCATED_IN]-(:Customer) AND NOT (n)<-[:LOCATED_IN]-(:Supplier)
		RETURN n.name AS name
		ORDER BY name`,
		},
		{
			ID: "F1", Category: CategorySort,
			Description: "Sort: customers by balance",
			Text: `
		MATCH (c:Customer)
		RETURN c.name AS name, c.acctbal AS acctbal
		ORDER BY acctbal DESC`,
			CountOnly: true,
		},
		{
			ID: "F2", Category: CategorySort,
			Description: "Distinct: line item ship modes",
			Text: `
		MATCH (l:LineItem)
		RETURN DISTINCT l.shipmode AS shipmode
		ORDER BY shipmode`,
		},
		{
			ID: "F3", Category: CategorySort,
			Description: "Top-N: most expensive orders",
			Text: `
		MATCH (o:Order)
		RETURN o.orderkey AS orderkey, o.totalprice AS totalprice
		ORDER BY totalprice DESC
		LIMIT $limit`,
			Params: map[string]any{"limit": o.Limit},
		},
	}
}
