package bench

import (
	"fmt"
	"strconv"
)

// ngqlCatalogue renders the catalogue for NebulaGraph. Values are interpolated as
// literals because MATCH, LOOKUP and GO do not all accept parameters in every
// position. Properties are addressed as var.Tag.prop and vertices by their "kind/key"
// VID.
func ngqlCatalogue(o Options) []Query {
	str := strconv.Quote
	vid := func(kind string, key int64) string { return str(fmt.Sprintf("%s/%d", kind, key)) }

	return []Query{
		{
			ID: "A1", Category: CategorySelection,
			Description: "Non-indexed selection: supplier by name",
			Text: fmt.Sprintf(`
		MATCH (s:Supplier)
		WHERE s.Supplier.name == %s
		RETURN s.Supplier.suppkey AS suppkey, s.Supplier.name AS name,
		       s.Supplier.address AS address, s.Supplier.phone AS phone`, str(o.SupplierName)),
		},
		{
			ID: "A2", Category: CategorySelection,
			Description: "Non-indexed range selection: orders by date",
			Text: fmt.Sprintf(`
		MATCH (o:Order)
		WHERE o.Order.orderdate >= %s AND o.Order.orderdate <= %s
		RETURN o.Order.orderkey AS orderkey, o.Order.orderdate AS orderdate,
		       o.Order.totalprice AS totalprice`, str(o.DateFrom), str(o.DateTo)),
			CountOnly: true,
		},
		{
			ID: "A3", Category: CategorySelection,
			Description: "Indexed selection: supplier by key",
			Text: fmt.Sprintf(`
		LOOKUP ON Supplier WHERE Supplier.suppkey == %d
		YIELD properties(vertex).suppkey AS suppkey, properties(vertex).name AS name,
		      properties(vertex).address AS address, properties(vertex).phone AS phone`, o.SupplierKey),
		},
		{
			ID: "A4", Category: CategorySelection,
			Description: "Indexed range selection: orders by customer key",
			Text: fmt.Sprintf(`
		LOOKUP ON Order WHERE Order.custkey >= %d AND Order.custkey <= %d
		YIELD properties(vertex).orderkey AS orderkey, properties(vertex).orderdate AS orderdate,
		      properties(vertex).totalprice AS totalprice`, o.CustomerFrom, o.CustomerTo),
			CountOnly: true,
		},
		{
			ID: "B1", Category: CategoryAggregation,
			Description: "COUNT: parts per brand",
			Text: `
		MATCH (p:Part)
		RETURN p.Part.brand AS brand, count(p) AS product_count
		ORDER BY product_count DESC`,
		},
		{
			ID: "B2", Category: CategoryAggregation,
			Description: "MAX: most expensive part per brand",
			Text: `
		MATCH (p:Part)
		RETURN p.Part.brand AS brand, max(p.Part.retailprice) AS max_price
		ORDER BY max_price DESC`,
		},
		{
			ID: "B3", Category: CategoryAggregation,
			Description: "MIN: lowest customer balance per market segment",
			Text: `
		MATCH (c:Customer)
		RETURN c.Customer.mktsegment AS segment, min(c.Customer.acctbal) AS min_acctbal
		ORDER BY min_acctbal`,
		},
		{
			ID: "C1", Category: CategoryJoin,
			Description: "Equi-join: customers with their orders since a date",
			Text: fmt.Sprintf(`
		MATCH (c:Customer)-[:customer_orders]->(o:Order)
		WHERE o.Order.orderdate >= %s
		RETURN c.Customer.name AS customer, o.Order.orderkey AS orderkey,
		       o.Order.totalprice AS totalprice`, str(o.DateFrom)),
			CountOnly: true,
		},
		{
			ID: "C2", Category: CategoryJoin,
			Description: "Multi-hop join: revenue per nation of a region",
			Text: fmt.Sprintf(`
		MATCH (r:Region)<-[:nation_region]-(n:Nation)<-[:customer_nation]-(:Customer)
		      -[:customer_orders]->(:Order)-[:order_lineitems]->(l:LineItem)
		WHERE r.Region.name == %s
		RETURN n.Nation.name AS nation,
		       sum(l.LineItem.extendedprice * (1 - l.LineItem.discount)) AS revenue
		ORDER BY revenue DESC`, str(o.Region)),
		},
		{
			ID: "D1", Category: CategoryTraversal,
			Description: "Neighbourhood: parts offered by a supplier",
			Text: fmt.Sprintf(`
		GO FROM %s OVER partsupp_supplier REVERSELY YIELD id($$) AS ps
		| GO FROM $-.ps OVER partsupp_part
		  YIELD properties($$).partkey AS partkey, properties($$).name AS name`, vid("supplier", o.SupplierKey)),
		},
		{
			ID: "D2", Category: CategoryTraversal,
			Description: "Shortest path between two customers",
			Text: fmt.Sprintf(`
		FIND SHORTEST PATH FROM %s TO %s OVER * BIDIRECT UPTO 8 STEPS YIELD path AS p
		| YIELD length($-.p) AS hops`, vid("customer", o.CustomerFrom), vid("customer", o.CustomerFrom+1)),
		},
		{
			ID: "E1", Category: CategorySet,
			Description: "Union: customer and supplier names of a nation",
			Text: fmt.Sprintf(`
		GO FROM %[1]s OVER customer_nation REVERSELY YIELD properties($$).name AS name
		UNION
		GO FROM %[1]s OVER supplier_nation REVERSELY YIELD properties($$).name AS name`, vid("nation", o.NationKey)),
			CountOnly: true,
		},
		{
			ID: "E2", Category: CategorySet,
			Description: "Intersection: nations with both customers and suppliers",
			Text: `
		LOOKUP ON customer_nation YIELD dst(edge) AS nation
		INTERSECT
		LOOKUP ON supplier_nation YIELD dst(edge) AS nation`,
		},
		{
			ID: "E3", Category: CategorySet,
			Description: "Difference: nations with customers but no suppliers",
			Text: `
		LOOKUP ON customer_nation YIELD dst(edge) AS nation
		MINUS
		LOOKUP ON supplier_nation YIELD dst(edge) AS nation`,
		},
		{
			ID: "F1", Category: CategorySort,
			Description: "Sort: customers by balance",
			Text: `
		MATCH (c:Customer)
		RETURN c.Customer.name AS name, c.Customer.acctbal AS acctbal
		ORDER BY acctbal DESC`,
			CountOnly: true,
		},
		{
			ID: "F2", Category: CategorySort,
			Description: "Distinct: line item ship modes",
			Text: `
		MATCH (l:LineItem)
		RETURN DISTINCT l.LineItem.shipmode AS shipmode
		ORDER BY shipmode`,
		},
		{
			ID: "F3", Category: CategorySort,
			Description: "Top-N: most expensive orders",
			Text: fmt.Sprintf(`
		MATCH (o:Order)
		RETURN o.Order.orderkey AS orderkey, o.Order.totalprice AS totalprice
		ORDER BY totalprice DESC
		LIMIT %d`, o.Limit),
		},
	}
}
