package bench

import "strconv"

// aqlCatalogue renders the catalogue for ArangoDB. Collections are named after tables
// and relationships; traversals and shortest paths go through the named graph.
func aqlCatalogue(o Options) []Query {
	supplierKey := strconv.FormatInt(o.SupplierKey, 10)

	return []Query{
		{
			ID: "A1", Category: CategorySelection,
			Description: "Non-indexed selection: supplier by name",
			Text: `
		FOR s IN supplier
		FILTER s.name == @name
		RETURN {suppkey: s.suppkey, name: s.name, address: s.address, phone: s.phone}`,
			Params: map[string]any{"name": o.SupplierName},
		},
		{
			ID: "A2", Category: CategorySelection,
			Description: "Non-indexed range selection: orders by date",
			Text: `
		FOR o IN orders
		FILTER o.orderdate >= @from AND o.orderdate <= @to
		RETURN {orderkey: o.orderkey, orderdate: o.orderdate, totalprice: o.totalprice}`,
			Params:    map[string]any{"from": o.DateFrom, "to": o.DateTo},
			CountOnly: true,
		},
		{
			ID: "A3", Category: CategorySelection,
			Description: "Indexed selection: supplier by key",
			Text: `
		FOR s IN supplier
		FILTER s._key == @key
		RETURN {suppkey: s.suppkey, name: s.name, address: s.address, phone: s.phone}`,
			Params: map[string]any{"key": supplierKey},
		},
		{
			ID: "A4", Category: CategorySelection,
			Description: "Indexed range selection: orders by customer key",
			Text: `
		FOR o IN orders
		FILTER o.custkey >= @lo AND o.custkey <= @hi
		RETURN {orderkey: o.orderkey, orderdate: o.orderdate, totalprice: o.totalprice}`,
			Params:    map[string]any{"lo": o.CustomerFrom, "hi": o.CustomerTo},
			CountOnly: true,
		},
		{
			ID: "B1", Category: CategoryAggregation,
			Description: "COUNT: parts per brand",
			Text: `
		FOR p IN part
		COLLECT brand = p.brand AGGREGATE product_count = COUNT(1)
		SORT product_count DESC
		RETURN {brand, product_count}`,
		},
		{
			ID: "B2", Category: CategoryAggregation,
			Description: "MAX: most expensive part per brand",
			Text: `
		FOR p IN part
		COLLECT brand = p.brand AGGREGATE max_price = MAX(p.retailprice)
		SORT max_price DESC
		RETURN {brand, max_price}`,
		},
		{
			ID: "B3", Category: CategoryAggregation,
			Description: "MIN: lowest customer balance per market segment",
			Text: `
		FOR c IN customer
		COLLECT segment = c.mktsegment AGGREGATE min_acctbal = MIN(c.acctbal)
		SORT min_acctbal
		RETURN {segment, min_acctbal}`,
		},
		{
			ID: "C1", Category: CategoryJoin,
			Description: "Equi-join: customers with their orders since a date",
			Text: `
		FOR o IN orders
		FILTER o.orderdate >= @from
		FOR c IN customer
		FILTER c.custkey == o.custkey
		RETURN {customer: c.name, orderkey: o.orderkey, totalprice: o.totalprice}`,
			Params:    map[string]any{"from": o.DateFrom},
			CountOnly: true,
		},
		{
			ID: "C2", Category: CategoryJoin,
			Description: "Multi-hop join: revenue per nation of a region",
			Text: `
		FOR r IN region
		FILTER r.name == @region
		FOR n IN 1..1 INBOUND r nation_region
		FOR c IN 1..1 INBOUND n customer_nation
		FOR ord IN 1..1 OUTBOUND c customer_orders
		FOR l IN 1..1 OUTBOUND ord order_lineitems
		COLLECT nation = n.name AGGREGATE revenue = SUM(l.extendedprice * (1 - l.discount))
		SORT revenue DESC
		RETURN {nation, revenue}`,
			Params: map[string]any{"region": o.Region},
		},
		{
			ID: "D1", Category: CategoryTraversal,
			Description: "Neighbourhood: parts offered by a supplier",
			Text: `
		FOR ps IN 1..1 INBOUND CONCAT('supplier/', @key) partsupp_supplier
		FOR p IN 1..1 OUTBOUND ps partsupp_part
		RETURN {partkey: p.partkey, name: p.name}`,
			Params: map[string]any{"key": supplierKey},
		},
		{
			ID: "D2", Category: CategoryTraversal,
			Description: "Shortest path between two customers",
			Text: `
		LET path = (
			FOR v IN ANY SHORTEST_PATH CONCAT('customer/', @from) TO CONCAT('customer/', @to)
			GRAPH @graph
			RETURN v._id
		)
		FILTER LENGTH(path) > 0
		RETURN {hops: LENGTH(path) - 1}`,
			Params: map[string]any{
				"from":  strconv.FormatInt(o.CustomerFrom, 10),
				"to":    strconv.FormatInt(o.CustomerFrom+1, 10),
				"graph": o.Graph,
			},
		},
		{
			ID: "E1", Category: CategorySet,
			Description: "Union: customer and supplier names of a nation",
			Text: `
		LET customers = (FOR c IN 1..1 INBOUND CONCAT('nation/', @nation) customer_nation RETURN c.name)
		LET suppliers = (FOR s IN 1..1 INBOUND CONCAT('nation/', @nation) supplier_nation RETURN s.name)
		FOR name IN UNION_DISTINCT(customers, suppliers)
		RETURN {name}`,
			Params:    map[string]any{"nation": strconv.FormatInt(o.NationKey, 10)},
			CountOnly: true,
		},
		{
			ID: "E2", Category: CategorySet,
			Description: "Intersection: nations with both customers and suppliers",
			Text: `
		LET customers = (FOR e IN customer_nation RETURN DISTINCT e._to)
		LET suppliers = (FOR e IN supplier_nation RETURN DISTINCT e._to)
		FOR id IN INTERSECTION(customers, suppliers)
		LET name = DOCUMENT(id).name
		SORT name
		RETURN {name}`,
		},
		{
			ID: "E3", Category: CategorySet,
			Description: "Difference: nations with customers but no suppliers",
			Text: `
		LET customers = (FOR e IN customer_nation RETURN DISTINCT e._to)
		LET suppliers = (FOR e IN supplier_nation RETURN DISTINCT e._to)
		FOR id IN MINUS(customers, suppliers)
		LET name = DOCUMENT(id).name
		SORT name
		RETURN {name}`,
		},
		{
			ID: "F1", Category: CategorySort,
			Description: "Sort: customers by balance",
			Text: `
		FOR c IN customer
		SORT c.acctbal DESC
		RETURN {name: c.name, acctbal: c.acctbal}`,
			CountOnly: true,
		},
		{
			ID: "F2", Category: CategorySort,
			Description: "Distinct: line item ship modes",
			Text: `
		FOR l IN lineitem
		COLLECT shipmode = l.shipmode
		RETURN {shipmode}`,
		},
		{
			ID: "F3", Category: CategorySort,
			Description: "Top-N: most expensive orders",
			Text: `
		FOR o IN orders
		SORT o.totalprice DESC
		LIMIT @limit
		RETURN {orderkey: o.orderkey, totalprice: o.totalprice}`,
			Params: map[string]any{"limit": o.Limit},
		},
	}
}
