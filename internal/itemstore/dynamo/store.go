package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"Chorus/internal/itemstore"
)

// Store implements itemstore.Store against a single DynamoDB table with
// partition key "class" and sort key "itemID". Conditional writes use
// DynamoDB condition expressions so lost races surface as
// itemstore.ErrConditionFailed instead of silent overwrites.
type Store struct {
	client *dynamodb.Client
	table  string
}

// New creates a store backed by the given DynamoDB table
func New(client *dynamodb.Client, table string) *Store {
	return &Store{client: client, table: table}
}

func (s *Store) keyAttrs(key itemstore.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"class":  &types.AttributeValueMemberS{Value: key.Class},
		"itemID": &types.AttributeValueMemberS{Value: key.ItemID},
	}
}

// marshalItem marshals the item and overlays the key attributes, so the
// stored record always carries the class discriminator.
func (s *Store) marshalItem(key itemstore.Key, item any) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, err
	}
	av["class"] = &types.AttributeValueMemberS{Value: key.Class}
	av["itemID"] = &types.AttributeValueMemberS{Value: key.ItemID}
	return av, nil
}

func (s *Store) Put(ctx context.Context, key itemstore.Key, item any) error {
	av, err := s.marshalItem(key, item)
	if err != nil {
		return itemstore.NewStoreError("put", key, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return itemstore.NewStoreError("put", key, err)
	}
	return nil
}

func (s *Store) PutIfAbsent(ctx context.Context, key itemstore.Key, item any) error {
	av, err := s.marshalItem(key, item)
	if err != nil {
		return itemstore.NewStoreError("putIfAbsent", key, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(itemID)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return itemstore.ErrConditionFailed
		}
		return itemstore.NewStoreError("putIfAbsent", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key itemstore.Key, out any) error {
	res, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.keyAttrs(key),
	})
	if err != nil {
		return itemstore.NewStoreError("get", key, err)
	}
	if res.Item == nil {
		return itemstore.ErrItemNotFound
	}
	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return itemstore.NewStoreError("get", key, err)
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, class string, out any) error {
	return s.scan(ctx, class, "", nil, out)
}

func (s *Store) ScanEq(ctx context.Context, class, field string, value any, out any) error {
	return s.scan(ctx, class, field, value, out)
}

func (s *Store) scan(ctx context.Context, class, field string, value any, out any) error {
	key := itemstore.Key{Class: class}

	filter := "#class = :class"
	names := map[string]string{"#class": "class"}
	values := map[string]types.AttributeValue{
		":class": &types.AttributeValueMemberS{Value: class},
	}

	if field != "" {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return itemstore.NewStoreError("scan", key, err)
		}
		filter += " AND #f = :v"
		names["#f"] = field
		values[":v"] = av
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(s.table),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return itemstore.NewStoreError("scan", key, err)
		}
		items = append(items, page.Items...)
	}

	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return itemstore.NewStoreError("scan", key, err)
	}
	return nil
}

func (s *Store) SetAttrs(ctx context.Context, key itemstore.Key, attrs map[string]any) error {
	if len(attrs) == 0 {
		return nil
	}

	// Deterministic expression ordering keeps requests reproducible in logs
	fields := make([]string, 0, len(attrs))
	for field := range attrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	names := make(map[string]string, len(attrs))
	values := make(map[string]types.AttributeValue, len(attrs))
	assignments := make([]string, 0, len(attrs))
	for i, field := range fields {
		av, err := attributevalue.Marshal(attrs[field])
		if err != nil {
			return itemstore.NewStoreError("setAttrs", key, err)
		}
		nameRef := fmt.Sprintf("#f%d", i)
		valueRef := fmt.Sprintf(":v%d", i)
		names[nameRef] = field
		values[valueRef] = av
		assignments = append(assignments, nameRef+" = "+valueRef)
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       s.keyAttrs(key),
		UpdateExpression:          aws.String("SET " + strings.Join(assignments, ", ")),
		ConditionExpression:       aws.String("attribute_exists(itemID)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return itemstore.ErrItemNotFound
		}
		return itemstore.NewStoreError("setAttrs", key, err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, key itemstore.Key, field string, value any) error {
	return s.append(ctx, key, field, value, -1)
}

func (s *Store) AppendIfLen(ctx context.Context, key itemstore.Key, field string, value any, length int) error {
	return s.append(ctx, key, field, value, length)
}

func (s *Store) append(ctx context.Context, key itemstore.Key, field string, value any, expectLen int) error {
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return itemstore.NewStoreError("append", key, err)
	}

	names := map[string]string{"#f": field}
	values := map[string]types.AttributeValue{
		":vals":  &types.AttributeValueMemberL{Value: []types.AttributeValue{av}},
		":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
	}

	condition := "attribute_exists(itemID)"
	if expectLen >= 0 {
		condition += " AND size(#f) = :len"
		values[":len"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expectLen)}
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       s.keyAttrs(key),
		UpdateExpression:          aws.String("SET #f = list_append(if_not_exists(#f, :empty), :vals)"),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			if expectLen >= 0 {
				return s.conditionOutcome(ctx, key)
			}
			return itemstore.ErrItemNotFound
		}
		return itemstore.NewStoreError("append", key, err)
	}
	return nil
}

func (s *Store) RemoveAt(ctx context.Context, key itemstore.Key, field string, index int, guard map[string]any) error {
	names := map[string]string{"#f": field}
	values := map[string]types.AttributeValue{}

	conditions := []string{"attribute_exists(itemID)"}

	guardAttrs := make([]string, 0, len(guard))
	for attr := range guard {
		guardAttrs = append(guardAttrs, attr)
	}
	sort.Strings(guardAttrs)

	for i, attr := range guardAttrs {
		av, err := attributevalue.Marshal(guard[attr])
		if err != nil {
			return itemstore.NewStoreError("removeAt", key, err)
		}
		nameRef := fmt.Sprintf("#g%d", i)
		valueRef := fmt.Sprintf(":g%d", i)
		names[nameRef] = attr
		values[valueRef] = av
		conditions = append(conditions, fmt.Sprintf("#f[%d].%s = %s", index, nameRef, valueRef))
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                aws.String(s.table),
		Key:                      s.keyAttrs(key),
		UpdateExpression:         aws.String(fmt.Sprintf("REMOVE #f[%d]", index)),
		ConditionExpression:      aws.String(strings.Join(conditions, " AND ")),
		ExpressionAttributeNames: names,
	}
	if len(values) > 0 {
		input.ExpressionAttributeValues = values
	}

	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			return s.conditionOutcome(ctx, key)
		}
		return itemstore.NewStoreError("removeAt", key, err)
	}
	return nil
}

// conditionOutcome disambiguates a failed compound condition: a vacant
// key means the item was deleted out from under the caller (not found),
// anything else means the guarded list changed (condition failed).
func (s *Store) conditionOutcome(ctx context.Context, key itemstore.Key) error {
	res, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(s.table),
		Key:                  s.keyAttrs(key),
		ProjectionExpression: aws.String("itemID"),
	})
	if err == nil && len(res.Item) == 0 {
		return itemstore.ErrItemNotFound
	}
	return itemstore.ErrConditionFailed
}

func (s *Store) Increment(ctx context.Context, key itemstore.Key, field string, delta int) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(s.table),
		Key:                      s.keyAttrs(key),
		UpdateExpression:         aws.String("ADD #f :d"),
		ConditionExpression:      aws.String("attribute_exists(itemID)"),
		ExpressionAttributeNames: map[string]string{"#f": field},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", delta)},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return itemstore.ErrItemNotFound
		}
		return itemstore.NewStoreError("increment", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key itemstore.Key) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.keyAttrs(key),
	})
	if err != nil {
		return itemstore.NewStoreError("delete", key, err)
	}
	return nil
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
